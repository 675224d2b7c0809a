// Package model holds the data types shared across the fingerprinting,
// metadata, album-art, lyrics, and orchestration packages.
package model
