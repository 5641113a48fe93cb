// Package remediate exposes the mutating commands: records-rename,
// records-feature-enable, and containers-scaffold.
package remediate
