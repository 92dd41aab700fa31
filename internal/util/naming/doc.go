// Package naming provides consistent naming functions for provisioned
// instances.
//
// Instance display names follow {prefix}-ad{N}-{ocpu}c{mem}g so a claimed
// instance can be traced back to the placement candidate that won.
package naming
