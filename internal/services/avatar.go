package services

import (
	"bytes"
	"fmt"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/PeeapDev/merchant-backend/internal/pkg/logger"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

// AvatarService renders the initials avatar shown next to staff members
// on the console. Files land under MEDIA_DIR and the relative path is
// stored on the staff row.
type AvatarService interface {
	CreateStaffAvatar(user *types.StaffUser) error
	GenerateStaffAvatar(user *types.StaffUser) (bytes.Buffer, error)
}

type avatarService struct {
	log      *logger.Logger
	mediaDir string
	bgColors []color.NRGBA
	fontFace font.Face
}

func NewAvatarService(log *logger.Logger) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	mediaDir := strings.TrimSpace(os.Getenv("MEDIA_DIR"))
	if mediaDir == "" {
		mediaDir = "./media"
	}
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create media dir: %w", err)
	}

	face, err := loadAvatarFont(206)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}

	return &avatarService{
		log:      serviceLog,
		mediaDir: mediaDir,
		bgColors: []color.NRGBA{
			{R: 0x2F, G: 0x6F, B: 0xED, A: 0xFF},
			{R: 0xD6, G: 0x45, B: 0x50, A: 0xFF},
			{R: 0x2E, G: 0x9E, B: 0x6B, A: 0xFF},
			{R: 0xB0, G: 0x5C, B: 0xD6, A: 0xFF},
			{R: 0xE0, G: 0x8A, B: 0x2E, A: 0xFF},
			{R: 0x3B, G: 0x8E, B: 0xA5, A: 0xFF},
		},
		fontFace: face,
	}, nil
}

func (as *avatarService) CreateStaffAvatar(user *types.StaffUser) error {
	if user == nil {
		return fmt.Errorf("staff user required")
	}

	buf, err := as.GenerateStaffAvatar(user)
	if err != nil {
		return err
	}

	oldPath := strings.TrimSpace(user.AvatarPath)

	rel := fmt.Sprintf("staff_avatar/%s/%d.png", user.ID.String(), time.Now().UnixNano())
	abs := filepath.Join(as.mediaDir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("failed to create avatar dir: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write staff avatar: %w", err)
	}

	user.AvatarPath = rel

	// Best-effort delete old AFTER we have a new one
	if oldPath != "" && oldPath != rel {
		if err := os.Remove(filepath.Join(as.mediaDir, oldPath)); err != nil && !os.IsNotExist(err) {
			as.log.Warn("failed to delete old avatar (ignored)", "oldPath", oldPath, "error", err)
		}
	}

	return nil
}

func (as *avatarService) GenerateStaffAvatar(user *types.StaffUser) (bytes.Buffer, error) {
	const size = 512

	dc := gg.NewContext(size, size)

	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	base := as.bgColors[rand.Intn(len(as.bgColors))]
	dc.SetColor(base)
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	initials := staffInitials(user.FirstName, user.LastName)

	dc.SetFontFace(as.fontFace)
	tw, th := dc.MeasureString(initials)
	cx, cy := float64(size)/2, float64(size)/2

	dc.SetColor(color.White)
	dc.DrawString(initials, cx-(tw/2)+5, cy+(th/2)-10)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

func staffInitials(first, last string) string {
	fInit := "?"
	if len(first) > 0 {
		fInit = strings.ToUpper(first[:1])
	}
	lInit := "?"
	if len(last) > 0 {
		lInit = strings.ToUpper(last[:1])
	}
	return fInit + lInit
}

// loadAvatarFont falls back to the bundled Go font when AVATAR_FONT is
// unset so dev environments need no extra assets.
func loadAvatarFont(size float64) (font.Face, error) {
	fontBytes := goregular.TTF
	if fontPath := strings.TrimSpace(os.Getenv("AVATAR_FONT")); fontPath != "" {
		raw, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		fontBytes = raw
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return face, nil
}
