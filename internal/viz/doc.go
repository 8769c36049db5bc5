// Package viz holds the terminal styles and small text renderers used by
// the csrtrack CLI.
package viz
