// Package seed provides database seeding utilities for development and
// testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"reverie/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumDreams   int
	ShouldClean bool
}

// DefaultPassword is the plaintext password every seeded account gets.
const DefaultPassword = "Password1234!"

var moods = []string{
	"calm", "uneasy", "euphoric", "terrified", "melancholy",
	"curious", "nostalgic", "confused", "serene", "restless",
}

// tagVocabulary is the canonical tag set seeded alongside dreams.
var tagVocabulary = map[string]string{
	"flying":       "Flying",
	"falling":      "Falling",
	"water":        "Water",
	"chase":        "Being Chased",
	"teeth":        "Teeth",
	"school":       "School",
	"death":        "Death",
	"animals":      "Animals",
	"family":       "Family",
	"celebrity":    "Celebrity",
	"apocalypse":   "Apocalypse",
	"time-travel":  "Time Travel",
	"lucid-moment": "Lucid Moment",
	"recurring":    "Recurring",
}

// Seed populates the database with test data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d dreams...", opts.NumUsers, opts.NumDreams)

	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d users created", len(users))

	tags, err := createTags(db)
	if err != nil {
		return fmt.Errorf("failed to create tags: %w", err)
	}
	log.Printf("✓ %d tags available", len(tags))

	dreams, err := createDreams(db, r, users, tags, opts.NumDreams)
	if err != nil {
		return fmt.Errorf("failed to create dreams: %w", err)
	}
	log.Printf("✓ %d dreams created", len(dreams))

	if err := createFollows(db, r, users); err != nil {
		return fmt.Errorf("failed to create follows: %w", err)
	}
	log.Println("✓ follow graph created")

	if err := createLikesAndComments(db, r, users, dreams); err != nil {
		return fmt.Errorf("failed to create likes and comments: %w", err)
	}
	log.Println("✓ likes and comments created")

	if err := createAnnouncements(db); err != nil {
		return fmt.Errorf("failed to create announcements: %w", err)
	}
	log.Println("✓ announcements created")

	log.Println("Seeding complete.")
	log.Printf("All seeded accounts use the password %q", DefaultPassword)
	return nil
}

// clearData removes previously seeded rows. Order matters: children first.
func clearData(db *gorm.DB) error {
	tables := []interface{}{
		&models.Notification{},
		&models.Announcement{},
		&models.StepCompletion{},
		&models.Subscription{},
		&models.DreamLike{},
		&models.Comment{},
		&models.Follow{},
		&models.Block{},
		&models.Dream{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error; err != nil {
			return err
		}
	}
	return db.Exec("DELETE FROM dream_tags").Error
}

func createUsers(db *gorm.DB, count int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i)
		if len(username) > 30 {
			username = username[:30]
		}
		user := models.User{
			Username:    username,
			Email:       fmt.Sprintf("%s@example.com", username),
			Password:    string(hashed),
			DisplayName: gofakeit.Name(),
			Bio:         gofakeit.Sentence(8),
			AvatarURL:   fmt.Sprintf("https://picsum.photos/seed/%s/200/200", username),
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createTags(db *gorm.DB) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(tagVocabulary))
	for id, name := range tagVocabulary {
		tag := models.Tag{ID: id, Name: name}
		if err := db.Where(models.Tag{ID: id}).FirstOrCreate(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func createDreams(db *gorm.DB, r *rand.Rand, users []models.User, tags []models.Tag, count int) ([]models.Dream, error) {
	dreams := make([]models.Dream, 0, count)
	for i := 0; i < count; i++ {
		author := users[r.Intn(len(users))]
		dream := models.Dream{
			UserID:   author.ID,
			Title:    strings.TrimSuffix(gofakeit.Sentence(5), "."),
			Body:     gofakeit.Paragraph(1, 4, 8, "\n"),
			Mood:     moods[r.Intn(len(moods))],
			IsLucid:  r.Intn(5) == 0,
			IsPublic: r.Intn(4) != 0,
			// realistic created_at spread over the last 90 days
			CreatedAt: time.Now().Add(-time.Duration(r.Intn(90*24)) * time.Hour),
		}
		if r.Intn(3) == 0 {
			dream.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
		}
		if err := db.Create(&dream).Error; err != nil {
			return nil, err
		}

		for _, tag := range pickTags(r, tags) {
			if err := db.Model(&dream).Association("Tags").Append(&tag); err != nil {
				return nil, err
			}
		}
		dreams = append(dreams, dream)
	}
	return dreams, nil
}

func pickTags(r *rand.Rand, tags []models.Tag) []models.Tag {
	count := r.Intn(4)
	picked := make([]models.Tag, 0, count)
	seen := make(map[string]struct{}, count)
	for len(picked) < count {
		tag := tags[r.Intn(len(tags))]
		if _, dup := seen[tag.ID]; dup {
			continue
		}
		seen[tag.ID] = struct{}{}
		picked = append(picked, tag)
	}
	return picked
}

func createFollows(db *gorm.DB, r *rand.Rand, users []models.User) error {
	for _, follower := range users {
		count := r.Intn(6)
		for i := 0; i < count; i++ {
			followed := users[r.Intn(len(users))]
			if followed.ID == follower.ID {
				continue
			}
			follow := models.Follow{FollowerID: follower.ID, FollowedID: followed.ID}
			if err := db.Where(follow).FirstOrCreate(&follow).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func createLikesAndComments(db *gorm.DB, r *rand.Rand, users []models.User, dreams []models.Dream) error {
	for _, dream := range dreams {
		if !dream.IsPublic {
			continue
		}

		likeCount := r.Intn(8)
		for i := 0; i < likeCount; i++ {
			liker := users[r.Intn(len(users))]
			like := models.DreamLike{DreamID: dream.ID, UserID: liker.ID}
			if err := db.Where(like).FirstOrCreate(&like).Error; err != nil {
				return err
			}
		}

		commentCount := r.Intn(4)
		for i := 0; i < commentCount; i++ {
			commenter := users[r.Intn(len(users))]
			comment := models.Comment{
				DreamID: dream.ID,
				UserID:  commenter.ID,
				Body:    gofakeit.Sentence(10),
			}
			if err := db.Create(&comment).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func createAnnouncements(db *gorm.DB) error {
	announcement := models.Announcement{
		Title:    "Welcome to Reverie",
		Body:     "Record your dreams, follow other dreamers, and explore the recent feed.",
		StartsAt: time.Now(),
	}
	return db.Create(&announcement).Error
}
