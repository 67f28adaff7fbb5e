// Package linux reconstructs kernel objects from a raw Linux memory
// capture: page-cache file contents, dentry paths, per-CPU variables, boot
// time, and kernel-vs-module code classification. It interprets bytes
// against a supplied schema (symbol table plus struct layouts) and assumes
// nothing about the capture's integrity: every traversal carries a hard
// depth or iteration bound so corrupted pointer graphs terminate instead
// of looping.
//
// One Session is one invocation over one capture. Sessions are not safe
// for concurrent use; independent sessions over independent captures are.
package linux
