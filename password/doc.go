// Package password provides argon2id hashing for stored account credentials.
// Hashes are serialized in PHC string format so parameters can be tightened
// later without invalidating existing rows.
package password
