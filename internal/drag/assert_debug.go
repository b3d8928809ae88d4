//go:build dragdebug

package drag

// Out-of-order lifecycle calls panic in dragdebug builds.
const debugAssertions = true
