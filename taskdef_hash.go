package taskflow

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// computeDefinitionHash hashes a task's declarative identity: its name,
// checkpoint path, and creation-order id. Every field is length-prefixed
// to avoid ambiguity between adjacent fields.
//
// This is a diagnostic label, not a content-addressed cache key: two
// tasks with identical name and checkpoint path registered at different
// points in creation order hash differently, on purpose, since the hash
// only needs to identify *this* task instance in a run's logs and
// traces.
func computeDefinitionHash(name, ckpt string, id int) string {
	h := sha256.New()

	writeField := func(data []byte) {
		var length [8]byte
		binary.BigEndian.PutUint64(length[:], uint64(len(data)))
		h.Write(length[:])
		h.Write(data)
	}

	writeField([]byte(name))
	writeField([]byte(ckpt))

	var idBytes [8]byte
	binary.BigEndian.PutUint64(idBytes[:], uint64(id))
	writeField(idBytes[:])

	return hex.EncodeToString(h.Sum(nil))
}
