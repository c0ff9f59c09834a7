// Package prompt reads operator answers from a terminal without blocking
// past cancellation. The matcher and workflow prompts share it.
package prompt
