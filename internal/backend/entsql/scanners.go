package entsql

import (
	"github.com/willfong/dbbench/internal/models"
)

// rowScanner is satisfied by ent's sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func userDest(u *models.User) []any {
	return []any{&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Age, &u.CreatedAt, &u.UpdatedAt}
}

func postDest(p *models.Post) []any {
	return []any{&p.ID, &p.UserID, &p.Title, &p.Content, &p.Status, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt}
}

func commentDest(c *models.Comment) []any {
	return []any{&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt}
}

func scanUser(rows rowScanner) (models.User, error) {
	var u models.User
	err := rows.Scan(userDest(&u)...)
	return u, err
}

func scanPost(rows rowScanner) (models.Post, error) {
	var p models.Post
	err := rows.Scan(postDest(&p)...)
	return p, err
}

func scanPostWithUser(rows rowScanner) (models.PostWithUser, error) {
	var r models.PostWithUser
	err := rows.Scan(append(postDest(&r.Post), userDest(&r.User)...)...)
	return r, err
}

func scanUserPostComment(rows rowScanner) (models.UserPostComment, error) {
	var r models.UserPostComment
	dest := append(userDest(&r.User), postDest(&r.Post)...)
	dest = append(dest, commentDest(&r.Comment)...)
	err := rows.Scan(dest...)
	return r, err
}

func scanPostCount(rows rowScanner) (models.PostCount, error) {
	var c models.PostCount
	err := rows.Scan(&c.UserID, &c.Count)
	return c, err
}
