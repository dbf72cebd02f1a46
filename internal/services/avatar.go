package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/repos"
)

const avatarSize = 512

// avatarPalette backs generated initials avatars. The color is picked by
// hashing the username so the same user always renders the same avatar.
var avatarPalette = []color.NRGBA{
	{R: 0x1A, G: 0xBC, B: 0x9C, A: 0xFF},
	{R: 0x2E, G: 0xCC, B: 0x71, A: 0xFF},
	{R: 0x34, G: 0x98, B: 0xDB, A: 0xFF},
	{R: 0x9B, G: 0x59, B: 0xB6, A: 0xFF},
	{R: 0xE6, G: 0x7E, B: 0x22, A: 0xFF},
	{R: 0xE7, G: 0x4C, B: 0x3C, A: 0xFF},
	{R: 0x16, G: 0xA0, B: 0x85, A: 0xFF},
	{R: 0x29, G: 0x80, B: 0xB9, A: 0xFF},
	{R: 0x8E, G: 0x44, B: 0xAD, A: 0xFF},
	{R: 0xD3, G: 0x54, B: 0x00, A: 0xFF},
}

type AvatarService interface {
	// GeneratePNG renders a circular initials avatar. seed picks the
	// background color and supplies fallback initials when the name is blank.
	GeneratePNG(firstName, lastName, seed string) ([]byte, error)
	// EnsureUserAvatar generates and persists an initials avatar for users
	// that have none yet. No-op when AvatarPNG is already set.
	EnsureUserAvatar(ctx context.Context, user *types.User) error
}

type avatarService struct {
	log      *logger.Logger
	users    repos.UserRepo
	fontFace font.Face
}

func NewAvatarService(log *logger.Logger, users repos.UserRepo) (AvatarService, error) {
	parsed, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing avatar font: %w", err)
	}
	face := truetype.NewFace(parsed, &truetype.Options{
		Size:    206,
		DPI:     72,
		Hinting: font.HintingNone,
	})

	return &avatarService{
		log:      log.With("service", "AvatarService"),
		users:    users,
		fontFace: face,
	}, nil
}

func (as *avatarService) GeneratePNG(firstName, lastName, seed string) ([]byte, error) {
	dc := gg.NewContext(avatarSize, avatarSize)

	dc.DrawCircle(avatarSize/2, avatarSize/2, avatarSize/2)
	dc.Clip()

	dc.SetColor(paletteColor(seed))
	dc.DrawRectangle(0, 0, avatarSize, avatarSize)
	dc.Fill()

	initials := initialsFor(firstName, lastName, seed)

	dc.SetFontFace(as.fontFace)
	tw, th := dc.MeasureString(initials)
	cx, cy := float64(avatarSize)/2, float64(avatarSize)/2

	dc.SetColor(color.White)
	dc.DrawString(initials, cx-(tw/2), cy+(th/2)-10)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding avatar PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (as *avatarService) EnsureUserAvatar(ctx context.Context, user *types.User) error {
	if len(user.AvatarPNG) > 0 {
		return nil
	}

	png, err := as.GeneratePNG(user.FirstName, user.LastName, user.Username)
	if err != nil {
		return err
	}
	if err := as.users.UpdateFields(ctx, nil, user.ID, map[string]any{"avatar_png": png}); err != nil {
		return err
	}
	user.AvatarPNG = png
	as.log.Debug("generated initials avatar", "user_id", user.ID)
	return nil
}

func paletteColor(seed string) color.NRGBA {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(seed))))
	return avatarPalette[int(h.Sum32())%len(avatarPalette)]
}

func initialsFor(first, last, fallback string) string {
	var b strings.Builder
	if r := firstRune(first); r != "" {
		b.WriteString(r)
	}
	if r := firstRune(last); r != "" {
		b.WriteString(r)
	}
	if b.Len() > 0 {
		return strings.ToUpper(b.String())
	}

	fallback = strings.TrimSpace(fallback)
	runes := []rune(fallback)
	switch {
	case len(runes) >= 2:
		return strings.ToUpper(string(runes[:2]))
	case len(runes) == 1:
		return strings.ToUpper(string(runes))
	default:
		return "?"
	}
}

func firstRune(s string) string {
	for _, r := range strings.TrimSpace(s) {
		return string(r)
	}
	return ""
}
