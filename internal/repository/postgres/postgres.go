package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

type donorRepository struct {
	db *sqlx.DB
}

type bloodRepository struct {
	db *sqlx.DB
}

type requestRepository struct {
	db *sqlx.DB
}

type matchRepository struct {
	db *sqlx.DB
}

type outboxRepository struct {
	db *sqlx.DB
}

type postRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func NewDonorRepository(db *sqlx.DB) repository.DonorRepository {
	return &donorRepository{db: db}
}

func NewBloodRepository(db *sqlx.DB) repository.BloodRepository {
	return &bloodRepository{db: db}
}

func NewRequestRepository(db *sqlx.DB) repository.RequestRepository {
	return &requestRepository{db: db}
}

func NewMatchRepository(db *sqlx.DB) repository.MatchRepository {
	return &matchRepository{db: db}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}

func NewPostRepository(db *sqlx.DB) repository.PostRepository {
	return &postRepository{db: db}
}
