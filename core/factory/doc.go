// Package factory builds pluggable modules from configuration. Each module
// entry names a registered type and carries raw settings which the type's
// factory decodes with Decode, so values overridden from the environment as
// strings still land in typed fields.
package factory
