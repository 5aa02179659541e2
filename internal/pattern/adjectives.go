package pattern

// naturalAdjectives maps dictionary gloss forms (훈) to the determiner
// forms used in word_meaning questions. Static data carried over from the
// curriculum material; glosses not listed pass through unchanged.
var naturalAdjectives = map[string]string{
	"아름다울": "아름다운",
	"클":    "큰",
	"작을":   "작은",
	"높을":   "높은",
	"낮을":   "낮은",
	"길":    "긴",
	"짧을":   "짧은",
	"밝을":   "밝은",
	"어두울":  "어두운",
	"많을":   "많은",
	"적을":   "적은",
	"흰":    "하얀",
	"검을":   "검은",
	"푸를":   "푸른",
	"누를":   "누런",
	"붉을":   "붉은",
	"기쁠":   "기쁜",
	"슬플":   "슬픈",
	"따뜻할":  "따뜻한",
	"차가울":  "차가운",
	"빠를":   "빠른",
	"느릴":   "느린",
	"강할":   "강한",
	"약할":   "약한",
	"멀":    "먼",
	"가까울":  "가까운",
	"무거울":  "무거운",
	"가벼울":  "가벼운",
	"새로울":  "새로운",
	"오랠":   "오랜",
}

// NaturalMeaning converts a gloss to its natural determiner form when the
// lookup table has an entry, and returns the gloss unchanged otherwise.
func NaturalMeaning(gloss string) string {
	if natural, ok := naturalAdjectives[gloss]; ok {
		return natural
	}
	return gloss
}
