package review

import (
	"fmt"
	"strings"

	"exam_prep_backend/internal/model"
)

// Subject 题目所属科目
type Subject string

const (
	SubjectPhysics   Subject = "physics"
	SubjectChemistry Subject = "chemistry"
	SubjectBiology   Subject = "biology"
	SubjectUnknown   Subject = "unknown"
)

// Subjects 固定顺序，同时决定复习卷中的题号区间
var Subjects = []Subject{SubjectPhysics, SubjectChemistry, SubjectBiology}

// UnknownSubjectPolicy 无法识别科目时的处理策略
type UnknownSubjectPolicy string

const (
	// UnknownAsBiology 历史行为：无法识别的题目一律计入生物
	UnknownAsBiology UnknownSubjectPolicy = "biology"
	// UnknownDiscard 丢弃无法识别的题目
	UnknownDiscard UnknownSubjectPolicy = "discard"
)

func ParseUnknownSubjectPolicy(s string) (UnknownSubjectPolicy, error) {
	switch UnknownSubjectPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnknownAsBiology:
		return UnknownAsBiology, nil
	case UnknownDiscard:
		return UnknownDiscard, nil
	}
	return "", fmt.Errorf("unknown subject policy %q", s)
}

// Resolve 按策略把 Unknown 映射为具体科目，第二个返回值为 false 表示丢弃
func (p UnknownSubjectPolicy) Resolve(s Subject) (Subject, bool) {
	if s != SubjectUnknown {
		return s, true
	}
	if p == UnknownDiscard {
		return SubjectUnknown, false
	}
	return SubjectBiology, true
}

var subjectAliases = map[string]Subject{
	"physics":   SubjectPhysics,
	"phy":       SubjectPhysics,
	"phys":      SubjectPhysics,
	"chemistry": SubjectChemistry,
	"chem":      SubjectChemistry,
	"biology":   SubjectBiology,
	"bio":       SubjectBiology,
	"botany":    SubjectBiology,
	"zoology":   SubjectBiology,
}

// NormalizeSubject 把各种写法的科目名归一化，无法识别时返回 Unknown
func NormalizeSubject(raw string) Subject {
	if s, ok := subjectAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return SubjectUnknown
}

type keywordRule struct {
	keyword string
	subject Subject
}

// 按顺序匹配，先命中者优先。前几条是容易被误判的生物章节。
var defaultChapterRules = []keywordRule{
	{"chemical coordination", SubjectBiology},
	{"locomotion", SubjectBiology},
	{"body fluids", SubjectBiology},

	{"electrochem", SubjectChemistry},
	{"chemistry", SubjectChemistry},
	{"solution", SubjectChemistry},
	{"organic", SubjectChemistry},
	{"inorganic", SubjectChemistry},
	{"periodic", SubjectChemistry},
	{"chemical", SubjectChemistry},
	{"bonding", SubjectChemistry},
	{"mole concept", SubjectChemistry},
	{"stoichiometr", SubjectChemistry},
	{"equilibrium", SubjectChemistry},
	{"redox", SubjectChemistry},
	{"hydrocarbon", SubjectChemistry},
	{"aldehyde", SubjectChemistry},
	{"ketone", SubjectChemistry},
	{"carboxylic", SubjectChemistry},
	{"amine", SubjectChemistry},
	{"alcohol", SubjectChemistry},
	{"haloalkane", SubjectChemistry},
	{"haloarene", SubjectChemistry},
	{"polymer", SubjectChemistry},
	{"coordination compound", SubjectChemistry},
	{"block element", SubjectChemistry},
	{"structure of atom", SubjectChemistry},
	{"states of matter", SubjectChemistry},
	{"solid state", SubjectChemistry},
	{"metallurgy", SubjectChemistry},
	{"hydrogen", SubjectChemistry},

	{"physical world", SubjectPhysics},
	{"mechanic", SubjectPhysics},
	{"kinematic", SubjectPhysics},
	{"motion", SubjectPhysics},
	{"gravitation", SubjectPhysics},
	{"rotational", SubjectPhysics},
	{"oscillation", SubjectPhysics},
	{"wave", SubjectPhysics},
	{"electro", SubjectPhysics},
	{"magnet", SubjectPhysics},
	{"optic", SubjectPhysics},
	{"current electricity", SubjectPhysics},
	{"alternating current", SubjectPhysics},
	{"capacitor", SubjectPhysics},
	{"semiconductor", SubjectPhysics},
	{"dual nature", SubjectPhysics},
	{"nuclei", SubjectPhysics},
	{"atoms", SubjectPhysics},
	{"units and measurement", SubjectPhysics},
	{"thermal", SubjectPhysics},
	{"thermodynamic", SubjectPhysics},
	{"fluid", SubjectPhysics},
	{"work, energy", SubjectPhysics},
	{"work energy", SubjectPhysics},
	{"kinetic theory", SubjectPhysics},
	{"system of particles", SubjectPhysics},
	{"electric charge", SubjectPhysics},
}

// Classifier 根据题目元数据判断科目
type Classifier struct {
	rules []keywordRule
}

func NewClassifier() *Classifier {
	return &Classifier{rules: defaultChapterRules}
}

// Classify 优先级：subject 字段 > Subject 字段 > 章节名关键词。
// 都无法判断时返回 SubjectUnknown，由调用方按 UnknownSubjectPolicy 处理。
func (c *Classifier) Classify(q model.QuestionRecord) Subject {
	if s := NormalizeSubject(q.Subject); s != SubjectUnknown {
		return s
	}
	if s := NormalizeSubject(q.SubjectLabel); s != SubjectUnknown {
		return s
	}

	chapter := strings.ToLower(q.ChapterName)
	if chapter == "" {
		return SubjectUnknown
	}
	for _, r := range c.rules {
		if strings.Contains(chapter, r.keyword) {
			return r.subject
		}
	}
	return SubjectUnknown
}
