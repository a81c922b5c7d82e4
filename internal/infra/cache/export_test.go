//go:build unit

package cache

var PutSnapshotScriptHash = putSnapshotScript.Hash()
