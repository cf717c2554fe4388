package network

// MaxFrameLengthBytes bounds one protocol frame on the wire. Compressed
// region lists of large processes run to megabytes; 16 MiB leaves ample
// headroom while keeping a bad length prefix from provoking a giant
// allocation.
const MaxFrameLengthBytes = 1 << 24
