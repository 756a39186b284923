package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"shop-platform/internal/entity"
)

const cartTTL = 24 * time.Hour

// CartService keeps carts server-side in redis, one per session id, so an
// attempt is always made against an explicit snapshot instead of whatever
// the client happens to hold. Lines stay ordered; duplicates are kept.
type CartService struct {
	rdb *redis.Client
}

func NewCartService(rdb *redis.Client) *CartService {
	return &CartService{rdb: rdb}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// NewSession creates an empty cart and returns its session id.
func (s *CartService) NewSession(ctx context.Context) (string, error) {
	sessionID := uuid.NewString()
	if err := s.save(ctx, sessionID, []entity.CartLine{}); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Get returns the cart for a session, or ErrCartNotFound.
func (s *CartService) Get(ctx context.Context, sessionID string) (*entity.Cart, error) {
	data, err := s.rdb.Get(ctx, cartKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}

	var lines []entity.CartLine
	if err := json.Unmarshal([]byte(data), &lines); err != nil {
		return nil, err
	}

	return &entity.Cart{SessionID: sessionID, Lines: lines}, nil
}

// AddLine appends one line for the product. Adding the same product again
// appends another line rather than merging quantities.
func (s *CartService) AddLine(ctx context.Context, sessionID string, product *entity.Product) (*entity.Cart, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Lines = append(cart.Lines, entity.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
	})

	if err := s.save(ctx, sessionID, cart.Lines); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveLine deletes the line at the given display index.
func (s *CartService) RemoveLine(ctx context.Context, sessionID string, index int) (*entity.Cart, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(cart.Lines) {
		return nil, ErrLineNotFound
	}
	cart.Lines = append(cart.Lines[:index], cart.Lines[index+1:]...)

	if err := s.save(ctx, sessionID, cart.Lines); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart but keeps the session alive.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return err
	}
	return s.save(ctx, sessionID, []entity.CartLine{})
}

func (s *CartService) save(ctx context.Context, sessionID string, lines []entity.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, cartKey(sessionID), data, cartTTL).Err()
}
