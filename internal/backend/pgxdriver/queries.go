package pgxdriver

const (
	insertUserSQL = `INSERT INTO users (username, email, first_name, last_name, age)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	selectUserByIDSQL = `SELECT id, username, email, first_name, last_name, age, created_at, updated_at
FROM users
WHERE id = $1`

	selectUsersLimitSQL = `SELECT id, username, email, first_name, last_name, age, created_at, updated_at
FROM users
ORDER BY created_at DESC
LIMIT $1`

	selectUsersFilteredSQL = `SELECT id, username, email, first_name, last_name, age, created_at, updated_at
FROM users
WHERE age >= $1 AND age <= $2
ORDER BY age, username
LIMIT $3`

	searchUsersByNameSQL = `SELECT id, username, email, first_name, last_name, age, created_at, updated_at
FROM users
WHERE first_name ILIKE $1 OR last_name ILIKE $1
ORDER BY username
LIMIT $2`

	updateUserSQL = `UPDATE users SET first_name = $2, last_name = $3, updated_at = NOW() WHERE id = $1`

	deleteUserSQL = `DELETE FROM users WHERE id = $1`

	insertPostSQL = `INSERT INTO posts (user_id, title, content, status)
VALUES ($1, $2, $3, $4)
RETURNING id`

	selectPostsWithUserSQL = `SELECT p.id, p.user_id, p.title, p.content, p.status, p.view_count, p.created_at, p.updated_at,
       u.id, u.username, u.email, u.first_name, u.last_name, u.age, u.created_at, u.updated_at
FROM posts p
JOIN users u ON u.id = p.user_id
ORDER BY p.created_at DESC
LIMIT $1`

	selectUsersPostsCommentsSQL = `SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.age, u.created_at, u.updated_at,
       p.id, p.user_id, p.title, p.content, p.status, p.view_count, p.created_at, p.updated_at,
       c.id, c.post_id, c.user_id, c.content, c.created_at
FROM users u
JOIN posts p ON p.user_id = u.id
JOIN comments c ON c.post_id = p.id
ORDER BY u.created_at DESC, p.created_at DESC, c.created_at DESC
LIMIT $1`

	countPostsPerUserSQL = `SELECT u.id AS user_id, COUNT(p.id) AS post_count
FROM users u
LEFT JOIN posts p ON p.user_id = u.id
GROUP BY u.id
ORDER BY post_count DESC`

	cleanupSQL = `DELETE FROM users WHERE username LIKE $1`

	insertCommentSQL = `INSERT INTO comments (post_id, user_id, content)
VALUES ($1, $2, $3)
RETURNING id`

	selectPostsByStatusSQL = `SELECT id, user_id, title, content, status, view_count, created_at, updated_at
FROM posts
WHERE status = $1
ORDER BY created_at DESC
LIMIT $2`

	incrementViewCountSQL = `UPDATE posts SET view_count = view_count + 1 WHERE id = $1`
)
