// Package blocks provides the built-in README blocks.
//
//	{{ block installation packages="go get,go install" }}
//	{{ block license }}
//	{{ block packages }}
//	{{ block donate }}
//	{{ block badgeNpmVersion packageName="left-pad" color="blue" }}
//	{{ block ai prompt="Write a short introduction" }}
//	{{ block ai promptFile="docs/intro.hbs" }}
//
// badgeNpmVersion and ai abort the render when their required parameter is
// missing. The ai block also aborts when no LLM client is configured, unless
// Deps.AIStrict is false, in which case it logs a warning and renders nothing.
package blocks
