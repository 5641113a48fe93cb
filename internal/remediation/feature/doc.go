// Package feature enables a boolean feature flag on records of one type.
package feature
