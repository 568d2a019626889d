package service

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"convo-chat/internal/domain"
	"convo-chat/internal/repository"
	"convo-chat/internal/storage"
)

// ProfileService administra los campos mutables del perfil y el ciclo de
// vida de la imagen de avatar: la cuenta referencia a lo sumo un archivo.
type ProfileService struct {
	logger *zap.Logger
	users  repository.UserRepository
	images storage.ImageStore
	cache  ProfileCache
}

var (
	ErrMissingName  = errors.New("first name and last name are required")
	ErrMissingImage = errors.New("image is required")
	ErrNoImage      = errors.New("no profile image to delete")
)

func NewProfileService(logger *zap.Logger, users repository.UserRepository, images storage.ImageStore, cache ProfileCache) *ProfileService {
	if cache == nil {
		cache = NewMemoryProfileCache()
	}
	return &ProfileService{
		logger: logger,
		users:  users,
		images: images,
		cache:  cache,
	}
}

// UpdateProfile escribe nombre y color. ProfileSetup se deriva siempre en el
// servidor a partir de los nombres, nunca del cliente.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID, firstName, lastName string, color int) (domain.User, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return domain.User{}, ErrMissingName
	}

	profileSetup := firstName != "" && lastName != ""
	user, err := s.users.UpdateProfile(ctx, userID, firstName, lastName, color, profileSetup)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	s.cache.Invalidate(userID)
	return user, nil
}

// SetAvatar guarda la imagen bajo un nombre único, apunta la cuenta al
// archivo nuevo y recién entonces retira el anterior. Si el retiro falla la
// operación igual concluye: el estado lógico ya quedó establecido.
func (s *ProfileService) SetAvatar(ctx context.Context, userID string, data []byte, originalName string) (domain.User, error) {
	if len(data) == 0 {
		return domain.User{}, ErrMissingImage
	}

	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	ref, err := s.images.Save(ctx, originalName, data)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.users.UpdateImage(ctx, userID, ref)
	if err != nil {
		// La cuenta nunca debe referenciar un archivo no confirmado.
		if removeErr := s.images.Remove(ctx, ref); removeErr != nil {
			s.logger.Warn("remove unreferenced image failed",
				zap.String("ref", ref), zap.Error(removeErr))
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	s.cache.Invalidate(userID)

	if current.Image != "" && current.Image != ref {
		if err := s.images.Remove(ctx, current.Image); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("remove previous avatar failed",
				zap.String("user_id", userID), zap.String("ref", current.Image), zap.Error(err))
		}
	}
	return user, nil
}

// DeleteAvatar limpia la referencia y retira el archivo. Un archivo ya
// ausente es un warning recuperable: el estado "sin imagen" se alcanzó igual.
func (s *ProfileService) DeleteAvatar(ctx context.Context, userID string) error {
	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if current.Image == "" {
		return ErrNoImage
	}

	if _, err := s.users.UpdateImage(ctx, userID, ""); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	s.cache.Invalidate(userID)

	if err := s.images.Remove(ctx, current.Image); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("avatar file already missing",
				zap.String("user_id", userID), zap.String("ref", current.Image))
		} else {
			s.logger.Warn("remove avatar file failed",
				zap.String("user_id", userID), zap.String("ref", current.Image), zap.Error(err))
		}
	}
	return nil
}
