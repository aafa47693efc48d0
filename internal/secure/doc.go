// Package secure holds sensitive-buffer handling and random material
// generation shared by the root package. Nothing here is exported outside
// the module.
package secure
