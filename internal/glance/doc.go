// Package glance assembles the repository summary pipeline: checkout
// discovery, remote identity resolution, metadata aggregation, and table
// rendering.
package glance
