//go:build !polysoupdebug

package meshcollide

const debugAsserts = false
