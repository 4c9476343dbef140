// Package changeset tracks which paths were added, modified or deleted since
// the last auto commit and renders the commit message that describes them.
package changeset
