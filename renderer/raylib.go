package renderer

import (
	"hash/fnv"
	"sort"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pyre/catalog"
)

// sprite holds the draw state of one visual.
type sprite struct {
	tex     catalog.TextureID
	x, y    float32
	sx, sy  float32
	alpha   float32
	visible bool
	order   int // Creation order keeps draw order stable across frames
}

// RaylibBackend renders visuals as textured quads. Catalog ids are
// baked lazily into radial-gradient placeholder textures tinted from a
// flame palette; shipping art would be loaded from the real atlas
// instead, but the handle lifecycle is identical.
type RaylibBackend struct {
	sprites  map[Handle]*sprite
	textures map[catalog.TextureID]rl.Texture2D
	next     Handle
	order    int
	drawBuf  []Handle
}

// NewRaylibBackend creates a backend. The raylib window must already
// be initialized.
func NewRaylibBackend() *RaylibBackend {
	return &RaylibBackend{
		sprites:  make(map[Handle]*sprite),
		textures: make(map[catalog.TextureID]rl.Texture2D),
	}
}

// CreateVisual allocates a sprite for the given texture id.
func (b *RaylibBackend) CreateVisual(tex catalog.TextureID) Handle {
	h := b.next
	b.next++
	b.order++
	b.sprites[h] = &sprite{tex: tex, sx: 1, sy: 1, alpha: 1, visible: true, order: b.order}
	return h
}

// DestroyVisual releases a sprite. Baked textures stay cached; they
// are shared across sprites and unloaded in Unload.
func (b *RaylibBackend) DestroyVisual(h Handle) {
	delete(b.sprites, h)
}

// SetPosition moves a sprite.
func (b *RaylibBackend) SetPosition(h Handle, x, y float32) {
	if s, ok := b.sprites[h]; ok {
		s.x, s.y = x, y
	}
}

// SetScale scales a sprite.
func (b *RaylibBackend) SetScale(h Handle, sx, sy float32) {
	if s, ok := b.sprites[h]; ok {
		s.sx, s.sy = sx, sy
	}
}

// SetAlpha sets a sprite's opacity.
func (b *RaylibBackend) SetAlpha(h Handle, alpha float32) {
	if s, ok := b.sprites[h]; ok {
		s.alpha = alpha
	}
}

// SetVisible shows or hides a sprite without destroying it.
func (b *RaylibBackend) SetVisible(h Handle, visible bool) {
	if s, ok := b.sprites[h]; ok {
		s.visible = visible
	}
}

// VisibleCount returns the number of visible sprites.
func (b *RaylibBackend) VisibleCount() int {
	n := 0
	for _, s := range b.sprites {
		if s.visible {
			n++
		}
	}
	return n
}

// Draw renders all visible sprites in creation order. Must be called
// between rl.BeginDrawing and rl.EndDrawing.
func (b *RaylibBackend) Draw() {
	b.drawBuf = b.drawBuf[:0]
	for h := range b.sprites {
		b.drawBuf = append(b.drawBuf, h)
	}
	sort.Slice(b.drawBuf, func(i, j int) bool {
		return b.sprites[b.drawBuf[i]].order < b.sprites[b.drawBuf[j]].order
	})

	for _, h := range b.drawBuf {
		s := b.sprites[h]
		if !s.visible || s.alpha <= 0 {
			continue
		}

		tex := b.texture(s.tex)
		w := float32(tex.Width) * s.sx
		ht := float32(tex.Height) * s.sy

		src := rl.Rectangle{X: 0, Y: 0, Width: float32(tex.Width), Height: float32(tex.Height)}
		dst := rl.Rectangle{X: s.x, Y: s.y, Width: w, Height: ht}
		origin := rl.Vector2{X: w / 2, Y: ht / 2}

		tint := rl.White
		tint.A = uint8(s.alpha * 255)
		rl.DrawTexturePro(tex, src, dst, origin, 0, tint)
	}
}

// texture returns the baked texture for a catalog id, baking on first use.
func (b *RaylibBackend) texture(id catalog.TextureID) rl.Texture2D {
	if tex, ok := b.textures[id]; ok {
		return tex
	}

	size := textureSize(id)
	inner, outer := texturePalette(id)
	img := rl.GenImageGradientRadial(size, size, 0.25, inner, outer)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(tex, rl.FilterBilinear)

	b.textures[id] = tex
	return tex
}

// textureSize maps a catalog id family to a placeholder resolution.
func textureSize(id catalog.TextureID) int {
	s := string(id)
	switch {
	case strings.HasPrefix(s, "single_"):
		return 40
	case strings.HasPrefix(s, "pair_"):
		return 64
	default:
		return 88
	}
}

// texturePalette derives a stable flame tint from the id hash.
func texturePalette(id catalog.TextureID) (inner, outer rl.Color) {
	h := fnv.New32a()
	h.Write([]byte(id))
	v := h.Sum32()

	// Core stays near white-yellow; the rim shifts orange to deep red
	inner = rl.Color{R: 255, G: 220 + uint8(v%36), B: 120 + uint8((v>>8)%80), A: 255}
	outer = rl.Color{R: 200 + uint8((v>>16)%56), G: 40 + uint8((v>>20)%80), B: 10, A: 0}
	return inner, outer
}

// Unload releases every baked texture. Call after the last Draw,
// before closing the window.
func (b *RaylibBackend) Unload() {
	for id, tex := range b.textures {
		rl.UnloadTexture(tex)
		delete(b.textures, id)
	}
	b.sprites = make(map[Handle]*sprite)
}
