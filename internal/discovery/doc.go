// Package discovery locates git checkouts beneath configured root directories.
package discovery
