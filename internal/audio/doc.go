// Package audio provides bugle-call playback.
// It uses the beep library to play WAV, OGG, and MP3 audio files with
// volume control and a decoded-buffer cache.
package audio
