package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog"
)

// 生成できなかったときに画面に出す文言
const (
	DescriptionFailed = "Error generando descripción con IA."
	DescriptionEmpty  = "No se pudo generar la descripción."
	DescriptionNoKey  = "Error: API Key de Gemini no configurada."
)

const descriptionPrompt = `Escribe una descripción de venta corta, atractiva y profesional para un producto llamado "%s" que está en la categoría "%s". Usa máximo 50 palabras.`

// Describer は商品説明を生成する。失敗しても文言を返し、エラーにはしない。
type Describer struct {
	gen   TextGenerator
	cache DescriptionCache
	log   zerolog.Logger
}

// gen が nil ならAPIキー未設定として扱う。
func NewDescriber(gen TextGenerator, cache DescriptionCache, log zerolog.Logger) *Describer {
	return &Describer{gen: gen, cache: cache, log: log}
}

func (d *Describer) Describe(ctx context.Context, title, category string) string {
	if d.gen == nil {
		return DescriptionNoKey
	}

	key := descriptionKey(title, category)
	if v, ok, err := d.cache.Get(ctx, key); err != nil {
		d.log.Warn().Err(err).Msg("description cache get")
	} else if ok {
		return v
	}

	text, err := d.gen.Generate(ctx, fmt.Sprintf(descriptionPrompt, title, category))
	if err != nil {
		d.log.Error().Err(err).Str("title", title).Msg("generate description")
		return DescriptionFailed
	}
	if text == "" {
		return DescriptionEmpty
	}

	if err := d.cache.Set(ctx, key, text); err != nil {
		d.log.Warn().Err(err).Msg("description cache set")
	}
	return text
}

func descriptionKey(title, category string) string {
	sum := sha256.Sum256([]byte(title + "\x00" + category))
	return "desc:" + hex.EncodeToString(sum[:])
}
