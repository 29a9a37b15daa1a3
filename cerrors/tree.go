// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cerrors

// A Tree is a hierarchical projection of a flat error List, indexed by
// either document path or schema path (§4.C). Each node holds the
// errors whose path terminates there, plus child nodes keyed by the
// next path segment.
type Tree struct {
	Errors   []*Error
	Children map[string]*Tree
}

func newTree() *Tree {
	return &Tree{Children: make(map[string]*Tree)}
}

func (t *Tree) at(path Path) *Tree {
	node := t
	for _, seg := range path {
		key := seg.String()
		child, ok := node.Children[key]
		if !ok {
			child = newTree()
			node.Children[key] = child
		}
		node = child
	}
	return node
}

// DocumentErrorTree projects a flat list by DocumentPath.
func DocumentErrorTree(l List) *Tree {
	t := newTree()
	for _, e := range l {
		node := t.at(e.DocumentPath)
		node.Errors = append(node.Errors, e)
	}
	return t
}

// SchemaErrorTree projects a flat list by SchemaPath.
func SchemaErrorTree(l List) *Tree {
	t := newTree()
	for _, e := range l {
		node := t.at(e.SchemaPath)
		node.Errors = append(node.Errors, e)
	}
	return t
}

// Lookup descends the tree along path, returning nil if no node
// exists there.
func (t *Tree) Lookup(path Path) *Tree {
	node := t
	for _, seg := range path {
		child, ok := node.Children[seg.String()]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}
