// Package fuzztests houses Go fuzz harnesses for the Sierra loader and the
// decompiler. They guard against panics and hangs on arbitrary input; the
// seeds run as ordinary tests.
package fuzztests
