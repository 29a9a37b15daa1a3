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

import "github.com/google/uuid"

// Stash is the error stash for one validator invocation: its
// accumulated List plus a correlation ID stamped on construction, so a
// host running a cluster of independent validators (§5) can tie a
// particular stash back to the invocation that produced it.
type Stash struct {
	ID   string
	List List
}

// NewStash returns an empty Stash stamped with a fresh correlation ID.
func NewStash() *Stash {
	return &Stash{ID: uuid.New().String()}
}

// Add appends err to the stash's List.
func (s *Stash) Add(err *Error) { s.List.Add(err) }

// Empty reports whether the stash's List has no errors.
func (s *Stash) Empty() bool { return s.List.Empty() }
