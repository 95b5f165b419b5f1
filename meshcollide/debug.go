//go:build polysoupdebug

package meshcollide

// debugAsserts enables internal post-condition checks
const debugAsserts = true
