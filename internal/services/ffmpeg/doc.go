// Package ffmpeg converts source audio into 24-bit big-endian AIFF with the
// ffmpeg CLI.
package ffmpeg
