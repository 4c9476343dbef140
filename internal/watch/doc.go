// Package watch reports file and directory changes below a root directory.
//
// It wraps fsnotify, adding every subdirectory to the watch list and
// following directories created later. Notifications become Events with one of
// five operations (add, addDir, change, unlink, unlinkDir) and a path relative
// to the root with forward slashes. Paths matching the ignore pattern, matched
// against that relative form, are never reported and ignored directories are
// not descended into.
//
// The root's .git directory is excluded even without a pattern, and
// permission-only changes are dropped.
package watch
