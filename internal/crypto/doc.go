// Package crypto implements reversible field-level encryption for sensitive
// stored values such as banking credentials.
//
// Values are wrapped in a versioned, self-describing text envelope:
//
//	enc_v1:<iv-hex>:<authtag-hex>:<ciphertext-hex>
//
// The cipher is AES-256-GCM with a fresh 96-bit IV per call and a 128-bit
// authentication tag, so encrypting the same plaintext twice yields different
// envelopes and any tampering with the stored value fails decryption closed.
package crypto
