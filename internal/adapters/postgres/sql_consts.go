package postgres

const (
	sqlTableLinks = "links"
	sqlCodeSeq    = "link_codes_seq"

	sqlColID         = "id"
	sqlColCode       = "code"
	sqlColTargetURL  = "target_url"
	sqlColCreatedAt  = "created_at"
	sqlColExpiresAt  = "expires_at"
	sqlColHitCount   = "hit_count"
	sqlColLastUsedAt = "last_used_at"
	sqlColOwnerToken = "owner_token"

	// notExpired is the logical-expiration filter shared by every read
	// and by the hit-count update. Physical reclamation is the sweeper's
	// job; this clause is what makes it invisible to resolution.
	sqlNotExpired = "(expires_at IS NULL OR expires_at > now())"

	errOpFmt = "postgres: %s: %w"
)

const (
	sqlCreateLink = `
INSERT INTO links (code, target_url, expires_at, owner_token)
VALUES ($1, $2, $3, $4)
RETURNING id, code, target_url, created_at, expires_at, hit_count, last_used_at, owner_token`

	sqlGetLinkByCode = `
SELECT id, code, target_url, created_at, expires_at, hit_count, last_used_at, owner_token
FROM links
WHERE code = $1 AND ` + sqlNotExpired

	sqlIncrementHits = `
UPDATE links
SET hit_count = hit_count + 1, last_used_at = now()
WHERE code = $1 AND ` + sqlNotExpired

	sqlDeleteLinkOwned = `
DELETE FROM links
WHERE code = $1 AND (owner_token = '' OR owner_token = $2)`

	sqlUpdateTargetOwned = `
UPDATE links
SET target_url = $3
WHERE code = $1 AND (owner_token = '' OR owner_token = $2)
RETURNING id, code, target_url, created_at, expires_at, hit_count, last_used_at, owner_token`

	sqlLinkExists = `SELECT EXISTS (SELECT 1 FROM links WHERE code = $1)`

	sqlNextCodeID = `SELECT nextval('` + sqlCodeSeq + `')`
)
