package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/studentvault/internal/auth"
	"github.com/rohits-web03/studentvault/internal/crypto"
	"github.com/rohits-web03/studentvault/internal/models"
	"github.com/rohits-web03/studentvault/internal/repositories"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = repositories.ErrNotFound
	ErrEmailTaken         = repositories.ErrDuplicateEmail
)

// ValidationError is a client mistake; Message is safe to show the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type StudentStore interface {
	Create(ctx context.Context, s *models.Student) error
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
	List(ctx context.Context) ([]models.Student, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) error
}

type TokenIssuer interface {
	IssuePair(auth.Identity) (auth.TokenPair, error)
	VerifyRefreshToken(token string) (auth.Identity, error)
}

// RegisterInput carries client-tier ciphertext for every PII field and the
// password cipher's output for Password. Email is cleartext.
type RegisterInput struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
	DateOfBirth    string `json:"dateOfBirth"`
	Gender         string `json:"gender"`
	Address        string `json:"address"`
	CourseEnrolled string `json:"courseEnrolled"`
	Password       string `json:"password"`
}

// UpdateInput has the same shape; empty fields are left untouched.
type UpdateInput RegisterInput

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StudentView is a record with the server layer removed. PII fields are still
// client-tier ciphertext; only the client can read them.
type StudentView struct {
	ID             string                  `json:"_id"`
	FullName       crypto.ClientCiphertext `json:"fullName"`
	Email          string                  `json:"email"`
	PhoneNumber    crypto.ClientCiphertext `json:"phoneNumber"`
	DateOfBirth    crypto.ClientCiphertext `json:"dateOfBirth"`
	Gender         crypto.ClientCiphertext `json:"gender"`
	Address        crypto.ClientCiphertext `json:"address"`
	CourseEnrolled crypto.ClientCiphertext `json:"courseEnrolled"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

type StudentSummary struct {
	ID       string                  `json:"_id"`
	FullName crypto.ClientCiphertext `json:"fullName"`
	Email    string                  `json:"email"`
}

type LoginResult struct {
	auth.TokenPair
	Student StudentSummary `json:"student"`
}

type StudentService struct {
	store     StudentStore
	cipher    crypto.ServerTier
	hasher    PasswordHasher
	tokens    TokenIssuer
	snapshots SnapshotStore
	now       func() time.Time

	dummyOnce sync.Once
	dummy     string
}

type Option func(*StudentService)

// WithSnapshots enables Export.
func WithSnapshots(s SnapshotStore) Option {
	return func(svc *StudentService) { svc.snapshots = s }
}

func WithClock(now func() time.Time) Option {
	return func(svc *StudentService) { svc.now = now }
}

func NewStudentService(store StudentStore, cipher crypto.ServerTier, hasher PasswordHasher, tokens TokenIssuer, opts ...Option) *StudentService {
	svc := &StudentService{
		store:  store,
		cipher: cipher,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// dummyDigest is a digest at the hasher's cost that no client ciphertext
// matches.
func (s *StudentService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		d, err := s.hasher.Hash("studentvault:no-such-student")
		if err != nil {
			log.Error().Err(err).Msg("Failed to build dummy password digest")
			return
		}
		s.dummy = d
	})
	return s.dummy
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email is invalid")
	}
	return email, nil
}

type piiField struct {
	name   string
	column string
	value  string
}

func piiFields(in RegisterInput) []piiField {
	return []piiField{
		{"fullName", models.ColFullName, in.FullName},
		{"phoneNumber", models.ColPhoneNumber, in.PhoneNumber},
		{"dateOfBirth", models.ColDateOfBirth, in.DateOfBirth},
		{"gender", models.ColGender, in.Gender},
		{"address", models.ColAddress, in.Address},
		{"courseEnrolled", models.ColCourseEnrolled, in.CourseEnrolled},
	}
}

// seal validates that value is a client envelope and adds the server layer.
func (s *StudentService) seal(f piiField) (string, error) {
	if !crypto.IsClientEnvelope(f.value) {
		return "", invalid("%s must be client-encrypted", f.name)
	}
	out, err := s.cipher.Seal(crypto.ClientCiphertext(f.value))
	if err != nil {
		return "", fmt.Errorf("encrypt %s: %w", f.name, err)
	}
	return string(out), nil
}

func (s *StudentService) hashPassword(password string) (string, error) {
	if !crypto.IsPasswordCiphertext(password) {
		return "", invalid("password must be client-encrypted")
	}
	return s.hasher.Hash(password)
}

func (s *StudentService) Register(ctx context.Context, in RegisterInput) (*StudentSummary, error) {
	if in.FullName == "" || in.Email == "" || in.Password == "" {
		return nil, invalid("fullName, email and password are required")
	}
	for _, f := range []struct{ name, value string }{
		{"phoneNumber", in.PhoneNumber},
		{"dateOfBirth", in.DateOfBirth},
		{"gender", in.Gender},
		{"courseEnrolled", in.CourseEnrolled},
		{"address", in.Address},
	} {
		if f.value == "" {
			return nil, invalid("%s is required", f.name)
		}
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	_, err = s.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	sealed := make(map[string]string, 6)
	for _, f := range piiFields(in) {
		v, err := s.seal(f)
		if err != nil {
			return nil, err
		}
		sealed[f.column] = v
	}
	digest, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		Email:          email,
		FullName:       sealed[models.ColFullName],
		PhoneNumber:    sealed[models.ColPhoneNumber],
		DateOfBirth:    sealed[models.ColDateOfBirth],
		Gender:         sealed[models.ColGender],
		Address:        sealed[models.ColAddress],
		CourseEnrolled: sealed[models.ColCourseEnrolled],
		Password:       digest,
	}
	if err := s.store.Create(ctx, student); err != nil {
		return nil, err
	}
	log.Info().Str("student_id", student.ID.String()).Msg("Student registered")
	return &StudentSummary{ID: student.ID.String(), FullName: crypto.ClientCiphertext(in.FullName), Email: email}, nil
}

func (s *StudentService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if in.Email == "" || in.Password == "" {
		return nil, invalid("email and password are required")
	}
	student, err := s.store.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if errors.Is(err, ErrNotFound) {
		// Pay for a bcrypt compare anyway so unknown emails take as long as
		// wrong passwords.
		_ = s.hasher.Verify(in.Password, s.dummyDigest())
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Verify(in.Password, student.Password); err != nil {
		if errors.Is(err, auth.ErrCredentialMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.issue(student)
}

// LoginWithEmail signs in a student whose email an identity provider has
// already verified. It never creates accounts.
func (s *StudentService) LoginWithEmail(ctx context.Context, email string) (*LoginResult, error) {
	student, err := s.store.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	return s.issue(student)
}

// Refresh exchanges a refresh token for a new pair, provided the student
// still exists.
func (s *StudentService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	id, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	uid, err := uuid.Parse(id.ID)
	if err != nil {
		return nil, &auth.AuthError{Err: auth.ErrInvalidToken, Cause: err}
	}
	student, err := s.store.FindByID(ctx, uid)
	if errors.Is(err, ErrNotFound) {
		return nil, &auth.AuthError{Err: auth.ErrInvalidToken, Cause: err}
	}
	if err != nil {
		return nil, err
	}
	return s.issue(student)
}

func (s *StudentService) issue(student *models.Student) (*LoginResult, error) {
	pair, err := s.tokens.IssuePair(auth.Identity{ID: student.ID.String(), Email: student.Email})
	if err != nil {
		return nil, err
	}
	name, err := s.cipher.Open(crypto.ServerCiphertext(student.FullName))
	if err != nil {
		return nil, fmt.Errorf("decrypt student %s: %w", student.ID, err)
	}
	return &LoginResult{
		TokenPair: pair,
		Student:   StudentSummary{ID: student.ID.String(), FullName: name, Email: student.Email},
	}, nil
}

func (s *StudentService) view(st *models.Student) (StudentView, error) {
	v := StudentView{ID: st.ID.String(), Email: st.Email, CreatedAt: st.CreatedAt, UpdatedAt: st.UpdatedAt}
	for _, f := range []struct {
		dst *crypto.ClientCiphertext
		src string
	}{
		{&v.FullName, st.FullName},
		{&v.PhoneNumber, st.PhoneNumber},
		{&v.DateOfBirth, st.DateOfBirth},
		{&v.Gender, st.Gender},
		{&v.Address, st.Address},
		{&v.CourseEnrolled, st.CourseEnrolled},
	} {
		c, err := s.cipher.Open(crypto.ServerCiphertext(f.src))
		if err != nil {
			log.Error().Err(err).Str("student_id", st.ID.String()).Msg("Stored field failed to decrypt")
			return StudentView{}, fmt.Errorf("decrypt student %s: %w", st.ID, err)
		}
		*f.dst = c
	}
	return v, nil
}

// List removes the server layer from every record, several records at a time.
func (s *StudentService) List(ctx context.Context) ([]StudentView, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StudentView, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := s.view(&records[i])
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseID(id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.Nil, invalid("Student id is required")
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, invalid("Student id is invalid")
	}
	return uid, nil
}

func (s *StudentService) Get(ctx context.Context, id string) (*StudentView, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	st, err := s.store.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	v, err := s.view(st)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Update re-encrypts each provided field on its own; omitted fields keep
// their stored ciphertext. A new password is hashed like at registration.
func (s *StudentService) Update(ctx context.Context, id string, in UpdateInput) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	fields := make(map[string]any)
	for _, f := range piiFields(RegisterInput(in)) {
		if f.value == "" {
			continue
		}
		v, err := s.seal(f)
		if err != nil {
			return err
		}
		fields[f.column] = v
	}
	if in.Email != "" {
		email, err := normalizeEmail(in.Email)
		if err != nil {
			return err
		}
		existing, err := s.store.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != uid:
			return ErrEmailTaken
		case err != nil && !errors.Is(err, ErrNotFound):
			return err
		}
		fields[models.ColEmail] = email
	}
	if in.Password != "" {
		digest, err := s.hashPassword(in.Password)
		if err != nil {
			return err
		}
		fields[models.ColPassword] = digest
	}
	return s.store.Update(ctx, uid, fields)
}

func (s *StudentService) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, uid)
}
