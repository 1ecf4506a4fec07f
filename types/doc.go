// Package types provides core types used across the agentswarm service.
// This package has ZERO dependencies on other agentswarm packages to avoid
// circular imports. All other packages should import types from here.
package types
