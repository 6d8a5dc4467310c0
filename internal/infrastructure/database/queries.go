package database

const eventColumns = `id, type, title, description, scheduled_at, creator_id, announced, started, created_at, updated_at`

const queryInsertEvent = `
INSERT INTO events (type, title, description, scheduled_at, creator_id, announced)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, updated_at
`

const queryGetEventByID = `
SELECT ` + eventColumns + `
FROM events
WHERE id = $1
`

const queryListUnannounced = `
SELECT ` + eventColumns + `
FROM events
WHERE NOT announced
ORDER BY scheduled_at, id
`

const queryListUnannouncedBetween = `
SELECT ` + eventColumns + `
FROM events
WHERE NOT announced
  AND scheduled_at >= $1
  AND scheduled_at < $2
ORDER BY scheduled_at, id
`

const queryListUpcoming = `
SELECT ` + eventColumns + `
FROM events
WHERE announced AND NOT started
ORDER BY scheduled_at, id
`

const queryLockEventState = `
SELECT announced, started
FROM events
WHERE id = $1
FOR UPDATE
`

const queryMarkAnnounced = `
UPDATE events
SET announced = TRUE, updated_at = now()
WHERE id = $1
`

const queryMarkStarted = `
UPDATE events
SET started = TRUE, updated_at = now()
WHERE id = $1
  AND announced
`

const queryEventExists = `
SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)
`

const queryInsertAttendance = `
INSERT INTO attendances (event_id, member_id, joined_at)
VALUES ($1, $2, COALESCE($3, now()))
ON CONFLICT (event_id, member_id) DO NOTHING
`

const queryListMemberIDs = `
SELECT member_id
FROM attendances
WHERE event_id = $1
ORDER BY joined_at, member_id
`
