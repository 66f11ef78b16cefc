//go:build !presenter_debug

package core

const defaultDebugMode = false
