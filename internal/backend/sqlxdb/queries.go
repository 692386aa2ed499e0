package sqlxdb

// Named statements, bound from the models' db tags
const (
	insertUserSQL = `INSERT INTO users (username, email, first_name, last_name, age)
VALUES (:username, :email, :first_name, :last_name, :age)
RETURNING id`

	insertPostSQL = `INSERT INTO posts (user_id, title, content, status)
VALUES (:user_id, :title, :content, :status)
RETURNING id`

	insertCommentSQL = `INSERT INTO comments (post_id, user_id, content)
VALUES (:post_id, :user_id, :content)
RETURNING id`
)

const (
	selectUserByIDSQL = `SELECT id, username, email, first_name, last_name, age, created_at, updated_at
FROM users WHERE id = $1`

	selectUsersLimitSQL = `SELECT id, username, email, first_name, last_name, age, created_at, updated_at
FROM users ORDER BY created_at DESC LIMIT $1`

	selectUsersFilteredSQL = `SELECT id, username, email, first_name, last_name, age, created_at, updated_at
FROM users WHERE age >= $1 AND age <= $2 ORDER BY age, username LIMIT $3`

	searchUsersByNameSQL = `SELECT id, username, email, first_name, last_name, age, created_at, updated_at
FROM users WHERE first_name ILIKE $1 OR last_name ILIKE $1 ORDER BY username LIMIT $2`

	updateUserSQL = `UPDATE users SET first_name = $2, last_name = $3, updated_at = NOW() WHERE id = $1`

	deleteUserSQL = `DELETE FROM users WHERE id = $1`

	incrementViewCountSQL = `UPDATE posts SET view_count = view_count + 1 WHERE id = $1`

	cleanupSQL = `DELETE FROM users WHERE username LIKE $1`

	selectPostsByStatusSQL = `SELECT id, user_id, title, content, status, view_count, created_at, updated_at
FROM posts WHERE status = $1 ORDER BY created_at DESC LIMIT $2`

	countPostsPerUserSQL = `SELECT u.id AS user_id, COUNT(p.id) AS post_count
FROM users u
LEFT JOIN posts p ON p.user_id = u.id
GROUP BY u.id
ORDER BY post_count DESC`

	selectPostsWithUserSQL = `SELECT
	p.id AS "post.id", p.user_id AS "post.user_id", p.title AS "post.title",
	p.content AS "post.content", p.status AS "post.status", p.view_count AS "post.view_count",
	p.created_at AS "post.created_at", p.updated_at AS "post.updated_at",
	u.id AS "author.id", u.username AS "author.username", u.email AS "author.email",
	u.first_name AS "author.first_name", u.last_name AS "author.last_name", u.age AS "author.age",
	u.created_at AS "author.created_at", u.updated_at AS "author.updated_at"
FROM posts p
JOIN users u ON u.id = p.user_id
ORDER BY p.created_at DESC
LIMIT $1`

	selectUsersPostsCommentsSQL = `SELECT
	u.id AS "author.id", u.username AS "author.username", u.email AS "author.email",
	u.first_name AS "author.first_name", u.last_name AS "author.last_name", u.age AS "author.age",
	u.created_at AS "author.created_at", u.updated_at AS "author.updated_at",
	p.id AS "post.id", p.user_id AS "post.user_id", p.title AS "post.title",
	p.content AS "post.content", p.status AS "post.status", p.view_count AS "post.view_count",
	p.created_at AS "post.created_at", p.updated_at AS "post.updated_at",
	c.id AS "comment.id", c.post_id AS "comment.post_id", c.user_id AS "comment.user_id",
	c.content AS "comment.content", c.created_at AS "comment.created_at"
FROM users u
JOIN posts p ON p.user_id = u.id
JOIN comments c ON c.post_id = p.id
ORDER BY u.created_at DESC, p.created_at DESC, c.created_at DESC
LIMIT $1`
)
