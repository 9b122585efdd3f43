package i18n

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lowaak/hiit-timer/internal/workout"
)

var discard = log.New(io.Discard, "", 0)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"pt-BR":       "pt",
		"es_ES.UTF-8": "es",
		"RU":          "ru",
		"en-GB":       "en",
		"de-DE":       "en",
		"":            "en",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalize(in), in)
	}
}

func TestTranslator_Phase(t *testing.T) {
	pt := New("pt", discard)
	assert.Equal(t, "pt", pt.Lang())
	assert.Equal(t, "TREINO", pt.Phase(workout.PhaseWork))
	assert.Equal(t, "DESCANSO", pt.Phase(workout.PhaseRest))

	en := New("en", discard)
	assert.Equal(t, "GET READY", en.Phase(workout.PhaseGetReady))
	assert.Equal(t, "ROUND RESET", en.Phase(workout.PhaseRoundReset))
	assert.Equal(t, "PHASE(42)", en.Phase(workout.Phase(42)))
}

func TestTranslator_T(t *testing.T) {
	es := New("es-MX", discard)
	assert.Equal(t, "Ronda", es.T("Round"))
	assert.Equal(t, "Untranslated", es.T("Untranslated"))

	fallback := New("fr", discard)
	assert.Equal(t, "en", fallback.Lang())
	assert.Equal(t, "Round", fallback.T("Round"))
}

func TestTranslator_EveryPhaseHasALabel(t *testing.T) {
	for _, lang := range Supported {
		tr := New(lang, discard)
		for phase := workout.PhaseGetReady; phase <= workout.PhaseFinished; phase++ {
			assert.NotEmpty(t, tr.Phase(phase), "%s/%s", lang, phase)
		}
	}
}

func TestNew_AutoNeverFails(t *testing.T) {
	tr := New("auto", discard)
	assert.Contains(t, Supported, tr.Lang())
}
