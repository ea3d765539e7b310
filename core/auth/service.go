package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/faculty"
	"github.com/dams-project/backend/core/student"
)

var (
	// errors
	ErrAuthenticationFailed = errors.New("invalid credentials")
	ErrInvalidOTP           = errors.New("invalid or expired code")
	ErrNoSession            = errors.New("session not found")
	ErrAdminNotFound        = errors.New("admin not found")
	ErrAdminExists          = errors.New("an admin with this email already exists")
)

type (
	AdminRepository interface {
		GetAdminByEmail(ctx context.Context, email string) (Admin, error)
		CreateAdmin(ctx context.Context, adm Admin) (Admin, error)
	}

	Service struct {
		conf     *core.Config
		admins   AdminRepository
		students student.Repository
		faculty  faculty.Repository
		sessions SessionStore
		otps     OTPStore
		mailSvc  core.EmailService
	}
)

func NewService(
	conf *core.Config,
	admins AdminRepository,
	students student.Repository,
	fac faculty.Repository,
	sessions SessionStore,
	otps OTPStore,
	mailSvc core.EmailService,
) *Service {
	return &Service{
		conf:     conf,
		admins:   admins,
		students: students,
		faculty:  fac,
		sessions: sessions,
		otps:     otps,
		mailSvc:  mailSvc,
	}
}

// LoginStudent verifies the credentials and opens a session.
func (svc *Service) LoginStudent(ctx context.Context, data StudentLogin) (Principal, string, error) {
	std, err := svc.students.GetStudentByUSN(ctx, data.USN)
	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			return Principal{}, "", ErrAuthenticationFailed
		}
		return Principal{}, "", err
	}
	if err = std.CheckPassword(data.Password); err != nil {
		return Principal{}, "", ErrAuthenticationFailed
	}

	p := Principal{
		Role:     RoleStudent,
		ID:       std.USN,
		Name:     std.Name,
		Email:    std.Email,
		Semester: std.Semester,
		Section:  std.Section,
	}
	token, err := svc.openSession(ctx, p)
	return p, token, err
}

// LoginFaculty verifies the credentials and opens a session.
func (svc *Service) LoginFaculty(ctx context.Context, data FacultyLogin) (Principal, string, error) {
	fac, err := svc.faculty.GetFacultyByID(ctx, data.ID)
	if err != nil {
		if errors.Is(err, faculty.ErrNotFound) {
			return Principal{}, "", ErrAuthenticationFailed
		}
		return Principal{}, "", err
	}
	if err = fac.CheckPassword(data.Password); err != nil {
		return Principal{}, "", ErrAuthenticationFailed
	}

	p := Principal{
		Role:  RoleFaculty,
		ID:    fac.ID,
		Name:  fac.Name,
		Email: fac.Email,
	}
	token, err := svc.openSession(ctx, p)
	return p, token, err
}

// StartAdminLogin verifies the password and emails a one-time code.
// No session is opened until the code is verified.
func (svc *Service) StartAdminLogin(ctx context.Context, data AdminLogin) error {
	adm, err := svc.admins.GetAdminByEmail(ctx, data.Email)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return ErrAuthenticationFailed
		}
		return err
	}
	if err = adm.CheckPassword(data.Password); err != nil {
		return ErrAuthenticationFailed
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err = svc.otps.Put(ctx, adm.Email, code, svc.conf.Session.OTPExpiry); err != nil {
		return err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: adm.Email}},
		Subject:      "Your login verification code",
		TemplateName: "admin-otp",
		TemplateData: struct {
			Code   string
			Expiry int
		}{Code: code, Expiry: int(svc.conf.Session.OTPExpiry.Minutes())},
	})
	return nil
}

// VerifyAdminOTP consumes the emailed code and opens the admin session.
// The code is deleted on first use whether or not it matches.
func (svc *Service) VerifyAdminOTP(ctx context.Context, data AdminOTP) (Principal, string, error) {
	code, err := svc.otps.Take(ctx, data.Email)
	if err != nil || code == "" || code != data.Code {
		return Principal{}, "", ErrInvalidOTP
	}

	adm, err := svc.admins.GetAdminByEmail(ctx, data.Email)
	if err != nil {
		return Principal{}, "", err
	}

	p := Principal{
		Role:  RoleAdmin,
		ID:    adm.Email,
		Email: adm.Email,
	}
	token, err := svc.openSession(ctx, p)
	return p, token, err
}

// Authenticate resolves a session token to its Principal.
func (svc *Service) Authenticate(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, ErrNoSession
	}
	return svc.sessions.Get(ctx, token)
}

func (svc *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return svc.sessions.Delete(ctx, token)
}

// CreateAdmin registers a new Admin.
func (svc *Service) CreateAdmin(ctx context.Context, na NewAdmin) (Admin, error) {
	if _, err := svc.admins.GetAdminByEmail(ctx, na.Email); err == nil {
		return Admin{}, ErrAdminExists
	} else if !errors.Is(err, ErrAdminNotFound) {
		return Admin{}, err
	}

	adm := Admin{Email: na.Email, CreatedAt: time.Now().UTC()}
	if err := adm.SetPassword(na.Password); err != nil {
		return Admin{}, err
	}
	return svc.admins.CreateAdmin(ctx, adm)
}

func (svc *Service) openSession(ctx context.Context, p Principal) (string, error) {
	token := uuid.NewString()
	if err := svc.sessions.Save(ctx, token, p, svc.conf.Session.Expiry); err != nil {
		return "", err
	}
	return token, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
