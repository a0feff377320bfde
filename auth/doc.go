// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the credential-hash primitive and session token signing.

# Passwords

Passwords are stored as salted bcrypt hashes:

	hash, err := auth.HashPassword("s3cret")
	ok := auth.VerifyPassword("s3cret", hash)

VerifyPassword relies on bcrypt's constant-time comparison. When a username
does not exist, callers run BurnPasswordCheck so the miss costs the same as a
wrong password.

# Session Tokens

Session tokens are HS256 JWTs carrying the user id (sub), username, role and a
random session id (jti):

	token, err := auth.IssueToken(secret, sessionID, identity, now, now.Add(time.Hour))
	claims, err := auth.ParseToken(secret, token, time.Now())

ParseToken rejects tokens with a bad signature, a different algorithm, no
expiry, or an expiry in the past. Revocation is tracked by the session package.
*/
package auth
