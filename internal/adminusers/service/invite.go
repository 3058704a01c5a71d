package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/notify"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/throttle"
	"github.com/aussiebroadwan/adminusers/pkg/cryptox"
	"github.com/aussiebroadwan/adminusers/pkg/idx"
	"github.com/aussiebroadwan/adminusers/pkg/slogx"
)

const codeAttempts = 3

var errCodeCollision = errors.New("invite code collision")

// InviteService runs the onboarding workflow. An invite is Active until it
// expires or is disabled; redeeming or cancelling disables it for good.
type InviteService struct {
	Store           store.Store
	Users           *UserService
	Hasher          Hasher
	OTP             Passcodes
	Notifier        Notifier
	Limiter         throttle.Limiter
	Links           LinksBuilder
	DefaultRole     string
	TTL             time.Duration
	LoginAttemptCap int
	Now             func() time.Time
}

type ServiceInviteRequest struct {
	Email           string
	Password        string
	TelephoneNumber string
}

type UserInviteRequest struct {
	Sender    string
	Email     string
	RoleName  string
	ServiceID string
}

type OTPRequest struct {
	TelephoneNumber string
	Password        string
}

// CreateServiceInvite invites the owner of a new service with the default role.
func (s *InviteService) CreateServiceInvite(ctx context.Context, req ServiceInviteRequest) (domain.Invite, error) {
	log := slogx.FromContext(ctx)
	email := strings.ToLower(req.Email)

	if err := s.ensureNoAccount(ctx, email); err != nil {
		return domain.Invite{}, err
	}

	roleName := s.DefaultRole
	if roleName == "" {
		roleName = DefaultInviteRole
	}
	role, err := s.Store.Roles().GetRoleByName(ctx, roleName)
	if err != nil {
		// Seeded reference data; a miss is a deployment problem.
		log.Error("default invite role missing",
			slog.String("role", roleName),
			slog.Any("error", err),
		)
		return domain.Invite{}, internal("role ["+roleName+"] not available", err)
	}

	var passwordHash string
	if req.Password != "" {
		if passwordHash, err = s.Hasher.Hash(req.Password); err != nil {
			return domain.Invite{}, internal("failed to hash password", err)
		}
	}

	inv, err := s.create(ctx, domain.Invite{
		Email:           email,
		TelephoneNumber: req.TelephoneNumber,
		Type:            domain.InviteTypeService,
		Role:            role,
		PasswordHash:    passwordHash,
	})
	if err != nil {
		return domain.Invite{}, err
	}

	s.Notifier.SendServiceInviteEmail(ctx, email, s.Links.InviteURL(inv.Code))
	return inv, nil
}

// CreateUserInvite invites someone to join an existing service with the
// given role. The sender must be an existing user.
func (s *InviteService) CreateUserInvite(ctx context.Context, req UserInviteRequest) (domain.Invite, error) {
	log := slogx.FromContext(ctx)
	email := strings.ToLower(req.Email)

	sender, err := s.Store.Users().GetUserByUsername(ctx, req.Sender)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invite sender not found", slog.String("sender", req.Sender))
			return domain.Invite{}, newError(ErrUnprocessable, "sender [%s] not found", req.Sender)
		}
		return domain.Invite{}, internal("failed to load sender", err)
	}

	if err := s.ensureNoAccount(ctx, email); err != nil {
		return domain.Invite{}, err
	}

	role, err := s.Store.Roles().GetRoleByName(ctx, req.RoleName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("attempted to create invite with unknown role", slog.String("role", req.RoleName))
			return domain.Invite{}, newError(ErrUnprocessable, "role [%s] not recognised", req.RoleName)
		}
		return domain.Invite{}, internal("failed to fetch role", err)
	}

	inv, err := s.create(ctx, domain.Invite{
		Email:     email,
		Type:      domain.InviteTypeUser,
		Role:      role,
		ServiceID: req.ServiceID,
		Sender:    sender.Username,
	})
	if err != nil {
		return domain.Invite{}, err
	}

	s.Notifier.SendUserInviteEmail(ctx, sender.Email, email, s.Links.InviteURL(inv.Code))
	return inv, nil
}

// FindInvite returns the invite for code. Disabled invites are returned so
// callers can tell a used invite apart; expired ones are not found.
func (s *InviteService) FindInvite(ctx context.Context, code string) (domain.Invite, error) {
	inv, err := s.lookup(ctx, code)
	if err != nil {
		return domain.Invite{}, err
	}
	if inv.Expired(clock(s.Now)) {
		return domain.Invite{}, newError(ErrNotFound, "invite not found")
	}
	return inv, nil
}

// DispatchOTP stores the invitee's telephone and password on the invite,
// rotates its OTP key and texts a passcode. It reports false when there is
// no redeemable invite for code. Delivery failures do not affect the result.
func (s *InviteService) DispatchOTP(ctx context.Context, code string, req OTPRequest) (bool, error) {
	log := slogx.FromContext(ctx)
	codeHash := cryptox.FingerprintToken(code)

	if err := allow(ctx, s.Limiter, "invite_otp", codeHash); err != nil {
		log.Warn("invite otp dispatch throttled")
		return false, err
	}

	inv, err := s.lookup(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !inv.Active(clock(s.Now)) {
		log.Info("otp requested for inactive invite", slog.String("invite_id", inv.ID))
		return false, nil
	}

	seed, err := s.OTP.NewSeed()
	if err != nil {
		return false, internal("failed to generate otp key", err)
	}
	hash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return false, internal("failed to hash password", err)
	}

	inv.OTPKey = seed
	inv.TelephoneNumber = req.TelephoneNumber
	inv.PasswordHash = hash
	inv, err = s.Store.Invites().UpdateInvite(ctx, inv, inv.Version)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrVersionConflict):
		return false, newError(ErrConflict, "invite was modified concurrently")
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, internal("failed to update invite", err)
	}

	passcode, err := s.OTP.Current(seed)
	if err != nil {
		return false, internal("failed to generate passcode", err)
	}

	purpose := notify.PurposeCreateUserFromInvite
	if inv.Type == domain.InviteTypeService {
		purpose = notify.PurposeCreateServiceFromInvite
	}
	s.Notifier.SendPasscode(ctx, inv.TelephoneNumber, passcode, purpose)

	log.Info("invite otp dispatched", slog.String("invite_id", inv.ID))
	return true, nil
}

// Activate redeems the invite with a passcode and returns what is needed to
// create the account. It succeeds at most once per invite.
func (s *InviteService) Activate(ctx context.Context, code, passcode string) (domain.InviteActivation, error) {
	return s.activate(ctx, code, passcode, nil)
}

// CompleteInvite redeems the invite and creates the account in one
// transaction, so a failed account creation leaves the invite redeemable.
func (s *InviteService) CompleteInvite(ctx context.Context, code, passcode string) (domain.User, error) {
	var user domain.User
	_, err := s.activate(ctx, code, passcode, func(ctx context.Context, tx store.Tx, a domain.InviteActivation) error {
		u, err := s.Users.createFromInvite(ctx, tx.Users(), a)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// CancelInvite disables the invite. Cancelling an already disabled invite is a no-op.
func (s *InviteService) CancelInvite(ctx context.Context, code string) error {
	inv, err := s.lookup(ctx, code)
	if err != nil {
		return err
	}
	if inv.Disabled {
		return nil
	}

	inv.Disabled = true
	if _, err := s.Store.Invites().UpdateInvite(ctx, inv, inv.Version); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return newError(ErrConflict, "invite was modified concurrently")
		}
		return internal("failed to cancel invite", err)
	}

	slogx.FromContext(ctx).Info("invite cancelled", slog.String("invite_id", inv.ID))
	return nil
}

func (s *InviteService) activate(
	ctx context.Context,
	code, passcode string,
	then func(ctx context.Context, tx store.Tx, a domain.InviteActivation) error,
) (domain.InviteActivation, error) {
	log := slogx.FromContext(ctx)

	inv, err := s.lookup(ctx, code)
	if err != nil {
		return domain.InviteActivation{}, err
	}
	if !inv.Active(clock(s.Now)) {
		return domain.InviteActivation{}, newError(ErrNotFound, "invite not found")
	}
	if inv.PasswordHash == "" {
		return domain.InviteActivation{}, newError(ErrUnprocessable, "invite has no password set, request a passcode first")
	}

	if !s.OTP.Verify(inv.OTPKey, passcode) {
		// Recorded outside the redemption transaction so the attempt counts
		// even though redemption fails.
		updated, err := s.Store.Invites().RecordOTPFailure(ctx, inv.CodeHash, capOrDefault(s.LoginAttemptCap))
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to record invite otp failure", slog.Any("error", err))
		}
		log.Info("invalid invite passcode",
			slog.String("invite_id", inv.ID),
			slog.Int("login_counter", updated.LoginCounter),
			slog.Bool("disabled", updated.Disabled),
		)
		return domain.InviteActivation{}, newError(ErrUnauthorized, "invalid passcode")
	}

	activation := domain.InviteActivation{
		InviteID:        inv.ID,
		Email:           inv.Email,
		TelephoneNumber: inv.TelephoneNumber,
		PasswordHash:    inv.PasswordHash,
		OTPKey:          inv.OTPKey,
		Role:            inv.Role,
		ServiceID:       inv.ServiceID,
		Type:            inv.Type,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		disabled := inv
		disabled.Disabled = true
		if _, err := tx.Invites().UpdateInvite(ctx, disabled, inv.Version); err != nil {
			return err
		}
		if then != nil {
			return then(ctx, tx, activation)
		}
		return nil
	})
	if err != nil {
		var svcErr *Error
		switch {
		case errors.As(err, &svcErr):
			return domain.InviteActivation{}, err
		case errors.Is(err, store.ErrVersionConflict), errors.Is(err, store.ErrNotFound):
			// Someone else redeemed or cancelled it first.
			return domain.InviteActivation{}, newError(ErrNotFound, "invite not found")
		default:
			log.Error("failed to redeem invite", slog.Any("error", err))
			return domain.InviteActivation{}, internal("failed to redeem invite", err)
		}
	}

	log.Info("invite redeemed",
		slog.String("invite_id", inv.ID),
		slog.String("invite_type", string(inv.Type)),
	)
	return activation, nil
}

// create fills in identity, code and expiry and persists the invite. The
// active-invite check happens inside the store insert.
func (s *InviteService) create(ctx context.Context, inv domain.Invite) (domain.Invite, error) {
	log := slogx.FromContext(ctx)

	seed, err := s.OTP.NewSeed()
	if err != nil {
		return domain.Invite{}, internal("failed to generate otp key", err)
	}

	now := clock(s.Now)
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	inv.ID = idx.NewAt(now).String()
	inv.OTPKey = seed
	inv.CreatedAt = now
	inv.ExpiresAt = now.Add(ttl)

	for attempt := 0; attempt < codeAttempts; attempt++ {
		if inv.Code, inv.CodeHash, err = s.newCode(ctx); err != nil {
			if errors.Is(err, errCodeCollision) {
				continue
			}
			return domain.Invite{}, internal("failed to generate invite code", err)
		}

		err = s.Store.Invites().CreateInvite(ctx, inv, now)
		switch {
		case err == nil:
			log.Info("invite created",
				slog.String("invite_id", inv.ID),
				slog.String("invite_type", string(inv.Type)),
				slog.String("role", inv.Role.Name),
				slog.Time("expires_at", inv.ExpiresAt),
			)
			inv.Links = s.Links.InviteLinks(inv.Code)
			return inv, nil
		case errors.Is(err, store.ErrActiveInviteExists):
			log.Warn("active invite already exists for email", slog.String("invite_type", string(inv.Type)))
			return domain.Invite{}, newError(ErrConflict, "invite for email [%s] already exists", inv.Email)
		case errors.Is(err, store.ErrAlreadyExists):
			continue
		default:
			log.Error("failed to create invite", slog.Any("error", err))
			return domain.Invite{}, internal("failed to create invite", err)
		}
	}
	return domain.Invite{}, internal("failed to create invite", errCodeCollision)
}

// newCode returns a fresh code and its fingerprint, checking the store for an
// existing invite with the same code.
func (s *InviteService) newCode(ctx context.Context) (string, string, error) {
	code, err := cryptox.GenerateCode(cryptox.TokenSize128)
	if err != nil {
		return "", "", err
	}
	hash := cryptox.FingerprintToken(code)

	_, err = s.Store.Invites().GetInviteByCodeHash(ctx, hash)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return code, hash, nil
	case err == nil:
		return "", "", errCodeCollision
	default:
		return "", "", err
	}
}

func (s *InviteService) ensureNoAccount(ctx context.Context, email string) error {
	_, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		slogx.FromContext(ctx).Warn("invite requested for existing account")
		return newError(ErrConflict, "email [%s] already in use", email)
	case errors.Is(err, store.ErrNotFound):
		return nil
	default:
		return internal("failed to check email", err)
	}
}

func (s *InviteService) lookup(ctx context.Context, code string) (domain.Invite, error) {
	inv, err := s.Store.Invites().GetInviteByCodeHash(ctx, cryptox.FingerprintToken(code))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invite{}, newError(ErrNotFound, "invite not found")
		}
		return domain.Invite{}, internal("failed to load invite", err)
	}
	inv.Code = code
	inv.Links = s.Links.InviteLinks(code)
	return inv, nil
}
