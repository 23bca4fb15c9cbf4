// Package graph provides the dependency topology of one execution: the set
// of task nodes, their forward and reverse edges, root discovery, and cycle
// detection. A graph is built fresh for every invocation and discarded when
// the call returns.
package graph
