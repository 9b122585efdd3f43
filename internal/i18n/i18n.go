package i18n

import (
	"log"
	"strings"

	"github.com/jeandeaual/go-locale"

	"github.com/lowaak/hiit-timer/internal/workout"
)

// Supported lists the languages with translations. English is the fallback.
var Supported = []string{"en", "pt", "es", "ru"}

var translations = map[string]map[string]string{
	"GET READY": {
		"pt": "PREPARE-SE",
		"es": "PREPÁRATE",
		"ru": "ПРИГОТОВЬТЕСЬ",
	},
	"WORK": {
		"pt": "TREINO",
		"es": "TRABAJO",
		"ru": "РАБОТА",
	},
	"REST": {
		"pt": "DESCANSO",
		"es": "DESCANSO",
		"ru": "ОТДЫХ",
	},
	"ROUND RESET": {
		"pt": "INTERVALO",
		"es": "PAUSA ENTRE RONDAS",
		"ru": "ПЕРЕРЫВ",
	},
	"FINISHED": {
		"pt": "CONCLUÍDO",
		"es": "TERMINADO",
		"ru": "ГОТОВО",
	},
	"Round": {
		"pt": "Rodada",
		"es": "Ronda",
		"ru": "Раунд",
	},
	"Exercise": {
		"pt": "Exercício",
		"es": "Ejercicio",
		"ru": "Упражнение",
	},
	"Total remaining": {
		"pt": "Tempo restante",
		"es": "Tiempo restante",
		"ru": "Осталось всего",
	},
	"Paused": {
		"pt": "Pausado",
		"es": "En pausa",
		"ru": "Пауза",
	},
	"Press Space to start": {
		"pt": "Pressione Espaço para iniciar",
		"es": "Pulsa Espacio para empezar",
		"ru": "Нажмите Пробел для старта",
	},
	"History": {
		"pt": "Histórico",
		"es": "Historial",
		"ru": "История",
	},
	"Settings": {
		"pt": "Configurações",
		"es": "Ajustes",
		"ru": "Настройки",
	},
	"Logs": {
		"pt": "Registros",
		"es": "Registros",
		"ru": "Журнал",
	},
}

var phaseKeys = map[workout.Phase]string{
	workout.PhaseGetReady:   "GET READY",
	workout.PhaseWork:       "WORK",
	workout.PhaseRest:       "REST",
	workout.PhaseRoundReset: "ROUND RESET",
	workout.PhaseFinished:   "FINISHED",
}

// Translator renders UI strings in one language
type Translator struct {
	lang string
}

// New returns a Translator for lang. An empty or "auto" lang is resolved from
// the system locale.
func New(lang string, logger *log.Logger) *Translator {
	if logger == nil {
		panic("I18n: logger cannot be nil")
	}
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || lang == "auto" {
		lang = detect(logger)
	}
	lang = normalize(lang)
	logger.Printf("I18n: Language set to %s", lang)
	return &Translator{lang: lang}
}

func (t *Translator) Lang() string { return t.lang }

// T translates key, returning it unchanged when no translation exists
func (t *Translator) T(key string) string {
	if byLang, ok := translations[key]; ok {
		if text, ok := byLang[t.lang]; ok {
			return text
		}
	}
	return key
}

// Phase returns the display label for a phase
func (t *Translator) Phase(phase workout.Phase) string {
	key, ok := phaseKeys[phase]
	if !ok {
		return strings.ToUpper(phase.String())
	}
	return t.T(key)
}

func detect(logger *log.Logger) string {
	userLocales, err := locale.GetLocales()
	if err != nil {
		logger.Printf("I18n: Could not get user locale, defaulting to english: %v", err)
		return "en"
	}
	if len(userLocales) == 0 {
		logger.Printf("I18n: No user locale detected, defaulting to english")
		return "en"
	}
	logger.Printf("I18n: Detected user locale %s", userLocales[0])
	return userLocales[0]
}

// normalize maps a locale such as pt-BR or es_ES.UTF-8 onto a supported language
func normalize(tag string) string {
	tag = strings.ToLower(tag)
	for _, lang := range Supported {
		if strings.HasPrefix(tag, lang) {
			return lang
		}
	}
	return "en"
}
