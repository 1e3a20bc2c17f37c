// Package classify sorts resolved files into the buckets checkers consume.
package classify

import (
	"path/filepath"
	"strings"
)

// Bucket is the closed set of file categories.
type Bucket int

// Buckets, declared in processing order.
const (
	Manifest Bucket = iota
	Template
	Script
	ScriptTemplate
	DataYAML
	DataJSON
	DependencyDescriptor
	Ignored
)

// Order is the canonical processing order of the checked buckets. Ignored is
// not part of it because it has no checker.
var Order = []Bucket{Manifest, Template, Script, ScriptTemplate, DataYAML, DataJSON, DependencyDescriptor}

var bucketNames = [...]string{
	Manifest:             "manifest",
	Template:             "template",
	Script:               "script",
	ScriptTemplate:       "script-template",
	DataYAML:             "data-yaml",
	DataJSON:             "data-json",
	DependencyDescriptor: "dependency-descriptor",
	Ignored:              "ignored",
}

func (b Bucket) String() string {
	if b < 0 || int(b) >= len(bucketNames) {
		return "unknown"
	}
	return bucketNames[b]
}

// Rule maps a filename predicate to a bucket.
type Rule struct {
	Bucket Bucket
	suffix string
	name   string
}

func (r Rule) matches(base string) bool {
	if r.name != "" {
		return base == r.name
	}
	return strings.HasSuffix(base, r.suffix)
}

// Rules is evaluated top to bottom and the first match wins. Suffixes are
// case-sensitive, so foo.PP is ignored.
var Rules = []Rule{
	{Bucket: Manifest, suffix: ".pp"},
	{Bucket: Template, suffix: ".epp"},
	{Bucket: Script, suffix: ".rb"},
	{Bucket: ScriptTemplate, suffix: ".erb"},
	{Bucket: DataYAML, suffix: ".yaml"},
	{Bucket: DataYAML, suffix: ".yml"},
	{Bucket: DataJSON, suffix: ".json"},
	{Bucket: DependencyDescriptor, name: "Puppetfile"},
	{Bucket: DependencyDescriptor, name: "Modulefile"},
}

// Of returns the bucket for a single path.
func Of(path string) Bucket {
	base := filepath.Base(path)
	for _, r := range Rules {
		if r.matches(base) {
			return r.Bucket
		}
	}
	return Ignored
}

// Buckets holds classified files; each slice keeps discovery order.
type Buckets map[Bucket][]string

// Classify assigns every file to exactly one bucket.
func Classify(files []string) Buckets {
	out := Buckets{}
	for _, f := range files {
		b := Of(f)
		out[b] = append(out[b], f)
	}
	return out
}

// Len returns the total number of classified files.
func (b Buckets) Len() int {
	n := 0
	for _, files := range b {
		n += len(files)
	}
	return n
}
