package parser

// ImportRecord is one imported name and the location of its import statement.
//
// Name is the dotted name as written for plain imports; for from-imports it is
// module.item. A trailing ".*" marks a wildcard import. Level counts the
// leading dots of a relative from-import (0 means absolute).
type ImportRecord struct {
	Name     string
	Alias    string
	Filename string
	Line     int
	Level    int
}
