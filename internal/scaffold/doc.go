// Package scaffold creates the standard container layout of a registry.
//
// Service.EnsureLayout walks a list of container paths and creates each one that
// does not exist yet through registry.ContainerManager. It is idempotent and best
// effort: a container that cannot be created is reported and the walk continues.
package scaffold
