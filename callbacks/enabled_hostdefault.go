//go:build alignalloc_hostdefault

package callbacks

// Enabled is false when built with the tag "alignalloc_hostdefault", in which case no callback table is ever
// created and hosts fall back to their default allocator.
const Enabled = false
