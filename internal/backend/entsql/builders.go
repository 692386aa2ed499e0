package entsql

import (
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/willfong/dbbench/internal/models"
)

const (
	usersTable    = "users"
	postsTable    = "posts"
	commentsTable = "comments"
)

func pg() *sql.DialectBuilder {
	return sql.Dialect(dialect.Postgres)
}

func insertUserQuery(u models.NewUser) (string, []any) {
	return pg().Insert(usersTable).
		Columns("username", "email", "first_name", "last_name", "age").
		Values(u.Username, u.Email, u.FirstName, u.LastName, u.Age).
		Returning("id").
		Query()
}

func selectUserByIDQuery(id uuid.UUID) (string, []any) {
	b := pg()
	t := b.Table(usersTable)
	return b.Select(t.Columns(models.UserColumns...)...).
		From(t).
		Where(sql.EQ(t.C("id"), id)).
		Query()
}

func selectUsersLimitQuery(limit int) (string, []any) {
	b := pg()
	t := b.Table(usersTable)
	return b.Select(t.Columns(models.UserColumns...)...).
		From(t).
		OrderBy(sql.Desc(t.C("created_at"))).
		Limit(limit).
		Query()
}

func selectUsersFilteredQuery(minAge, maxAge int32, limit int) (string, []any) {
	b := pg()
	t := b.Table(usersTable)
	return b.Select(t.Columns(models.UserColumns...)...).
		From(t).
		Where(sql.And(
			sql.GTE(t.C("age"), minAge),
			sql.LTE(t.C("age"), maxAge),
		)).
		OrderBy(t.C("age"), t.C("username")).
		Limit(limit).
		Query()
}

// iLike matches col against %pattern% without escaping wildcards in
// pattern, the same match the other backends run. sql.ContainsFold escapes
// them.
func iLike(col, pattern string) *sql.Predicate {
	return sql.P(func(b *sql.Builder) {
		b.Ident(col).WriteString(" ILIKE ").Arg("%" + pattern + "%")
	})
}

func searchUsersByNameQuery(pattern string, limit int) (string, []any) {
	b := pg()
	t := b.Table(usersTable)
	return b.Select(t.Columns(models.UserColumns...)...).
		From(t).
		Where(sql.Or(
			iLike(t.C("first_name"), pattern),
			iLike(t.C("last_name"), pattern),
		)).
		OrderBy(t.C("username")).
		Limit(limit).
		Query()
}

func updateUserQuery(id uuid.UUID, firstName, lastName string) (string, []any) {
	return pg().Update(usersTable).
		Set("first_name", firstName).
		Set("last_name", lastName).
		Set("updated_at", sql.Expr("NOW()")).
		Where(sql.EQ("id", id)).
		Query()
}

func deleteUserQuery(id uuid.UUID) (string, []any) {
	return pg().Delete(usersTable).
		Where(sql.EQ("id", id)).
		Query()
}

func cleanupQuery() (string, []any) {
	return pg().Delete(usersTable).
		Where(sql.Like("username", models.SyntheticPattern)).
		Query()
}

func insertPostQuery(p models.NewPost) (string, []any) {
	return pg().Insert(postsTable).
		Columns("user_id", "title", "content", "status").
		Values(p.UserID, p.Title, p.Content, p.Status).
		Returning("id").
		Query()
}

func insertCommentQuery(c models.NewComment) (string, []any) {
	return pg().Insert(commentsTable).
		Columns("post_id", "user_id", "content").
		Values(c.PostID, c.UserID, c.Content).
		Returning("id").
		Query()
}

func selectPostsWithUserQuery(limit int) (string, []any) {
	b := pg()
	p := b.Table(postsTable).As("p")
	u := b.Table(usersTable).As("u")
	columns := append(p.Columns(models.PostColumns...), u.Columns(models.UserColumns...)...)
	return b.Select(columns...).
		From(p).
		Join(u).On(p.C("user_id"), u.C("id")).
		OrderBy(sql.Desc(p.C("created_at"))).
		Limit(limit).
		Query()
}

func selectUsersPostsCommentsQuery(limit int) (string, []any) {
	b := pg()
	u := b.Table(usersTable).As("u")
	p := b.Table(postsTable).As("p")
	c := b.Table(commentsTable).As("c")
	columns := append(u.Columns(models.UserColumns...), p.Columns(models.PostColumns...)...)
	columns = append(columns, c.Columns(models.CommentColumns...)...)
	return b.Select(columns...).
		From(u).
		Join(p).On(u.C("id"), p.C("user_id")).
		Join(c).On(p.C("id"), c.C("post_id")).
		OrderBy(
			sql.Desc(u.C("created_at")),
			sql.Desc(p.C("created_at")),
			sql.Desc(c.C("created_at")),
		).
		Limit(limit).
		Query()
}

func countPostsPerUserQuery() (string, []any) {
	b := pg()
	u := b.Table(usersTable).As("u")
	p := b.Table(postsTable).As("p")
	return b.Select(
		sql.As(u.C("id"), "user_id"),
		sql.As(sql.Count(p.C("id")), "post_count"),
	).
		From(u).
		LeftJoin(p).On(u.C("id"), p.C("user_id")).
		GroupBy(u.C("id")).
		OrderBy(sql.Desc("post_count")).
		Query()
}

func selectPostsByStatusQuery(status string, limit int) (string, []any) {
	b := pg()
	t := b.Table(postsTable)
	return b.Select(t.Columns(models.PostColumns...)...).
		From(t).
		Where(sql.EQ(t.C("status"), status)).
		OrderBy(sql.Desc(t.C("created_at"))).
		Limit(limit).
		Query()
}

func incrementViewCountQuery(postID uuid.UUID) (string, []any) {
	return pg().Update(postsTable).
		Add("view_count", 1).
		Where(sql.EQ("id", postID)).
		Query()
}
