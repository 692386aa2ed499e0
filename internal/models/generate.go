package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Fixed values used by the update groups
const (
	UpdatedFirstName  = "Updated"
	UpdatedLastName   = "Name"
	ModifiedFirstName = "Modified"
	ModifiedLastName  = "Name"
)

// GenerateUser returns the synthetic user for index i. The same index always
// yields the same fields, so every backend receives identical input.
func GenerateUser(i int64) NewUser {
	age := int32(20 + i%60)
	return NewUser{
		Username:  fmt.Sprintf("%s%d", SyntheticPrefix, i),
		Email:     fmt.Sprintf("%s%d@benchmark.com", SyntheticPrefix, i),
		FirstName: fmt.Sprintf("First%d", i),
		LastName:  fmt.Sprintf("Last%d", i),
		Age:       &age,
	}
}

// GenerateUsers returns GenerateUser for indices [start, start+n)
func GenerateUsers(start int64, n int) []NewUser {
	users := make([]NewUser, n)
	for i := range users {
		users[i] = GenerateUser(start + int64(i))
	}
	return users
}

// GeneratePost returns the synthetic post for index i written by userID
func GeneratePost(userID uuid.UUID, i int64) NewPost {
	status := StatusPublished
	if i%3 == 0 {
		status = StatusDraft
	}
	return NewPost{
		UserID: userID,
		Title:  fmt.Sprintf("Benchmark Post Title %d", i),
		Content: fmt.Sprintf("This is the content for benchmark post number %d. "+
			"It contains enough text to simulate a realistic blog post with multiple "+
			"paragraphs of content that would be typical in a real-world application.", i),
		Status: status,
	}
}

// GeneratePosts returns n posts for indices [0, n) written by userID
func GeneratePosts(userID uuid.UUID, n int) []NewPost {
	posts := make([]NewPost, n)
	for i := range posts {
		posts[i] = GeneratePost(userID, int64(i))
	}
	return posts
}

// GenerateComment returns the synthetic comment for index i
func GenerateComment(postID, userID uuid.UUID, i int64) NewComment {
	return NewComment{
		PostID:  postID,
		UserID:  userID,
		Content: fmt.Sprintf("This is benchmark comment number %d with some realistic content.", i),
	}
}
