package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkoosis/puppetcheck/pkg/classify"
)

func TestOf_MapsFilenamesToBuckets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want classify.Bucket
	}{
		{"manifests/init.pp", classify.Manifest},
		{"templates/motd.epp", classify.Template},
		{"lib/facter/role.rb", classify.Script},
		{"templates/config.erb", classify.ScriptTemplate},
		{"hieradata/common.yaml", classify.DataYAML},
		{"hieradata/node.yml", classify.DataYAML},
		{"metadata.json", classify.DataJSON},
		{"Puppetfile", classify.DependencyDescriptor},
		{"modules/foo/Modulefile", classify.DependencyDescriptor},
		{"README.md", classify.Ignored},
		{"foo.PP", classify.Ignored},
		{"Puppetfile.lock", classify.Ignored},
		{"myPuppetfile", classify.Ignored},
		{"archive.pp.bak", classify.Ignored},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, classify.Of(tc.path))
		})
	}
}

func TestClassify_IsTotalAndOrderPreserving(t *testing.T) {
	t.Parallel()

	files := []string{"b.pp", "x.txt", "a.pp", "c.rb", "d.json", "Puppetfile", "e.yaml", "f.epp", "g.erb", "y.md"}

	buckets := classify.Classify(files)

	assert.Equal(t, []string{"b.pp", "a.pp"}, buckets[classify.Manifest])
	assert.Equal(t, []string{"x.txt", "y.md"}, buckets[classify.Ignored])
	assert.Equal(t, len(files), buckets.Len())

	seen := map[string]int{}
	for _, fs := range buckets {
		for _, f := range fs {
			seen[f]++
		}
	}
	for _, f := range files {
		assert.Equal(t, 1, seen[f], f)
	}
}

func TestBucketString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "script-template", classify.ScriptTemplate.String())
	assert.Equal(t, "dependency-descriptor", classify.DependencyDescriptor.String())
	assert.Equal(t, "unknown", classify.Bucket(42).String())
	assert.NotContains(t, classify.Order, classify.Ignored)
}
