// Package password provides Argon2id password hashing in PHC string
// format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Verification is constant-time and reads the cost parameters from the
// stored hash, so costs can be raised without invalidating old hashes.
package password
