// Package project finds and loads perlsense.toml and discovers the files of
// a workspace. Package dag orders the modules those files declare.
package project
