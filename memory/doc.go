// Package memory keeps bounded, per-session conversation history used to
// give the language model multi-turn context. History is in-memory only and
// does not survive a restart.
package memory
