package model

import "strings"

// ── 角色 ──

// Role 每个请求解析一次的调用方角色
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCompany Role = "company"
	RoleStudent Role = "student"
	RoleUser    Role = "user"
)

// 账号持有的档案类型，写入 accounts.profile_kind
const (
	ProfileKindStudent = "student"
	ProfileKindCompany = "company"
)

// ── 投递状态机 ──

const (
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusShortlisted = "shortlisted"
	StatusRejected    = "rejected"
	StatusHired       = "hired"
	StatusWithdrawn   = "withdrawn"
)

var applicationTransitions = map[string][]string{
	StatusSubmitted:   {StatusUnderReview, StatusShortlisted, StatusRejected, StatusHired, StatusWithdrawn},
	StatusUnderReview: {StatusShortlisted, StatusRejected, StatusHired, StatusWithdrawn},
	StatusShortlisted: {StatusHired, StatusRejected, StatusWithdrawn},
	StatusRejected:    nil,
	StatusHired:       nil,
	StatusWithdrawn:   nil,
}

// IsValidApplicationStatus 状态值是否合法
func IsValidApplicationStatus(status string) bool {
	_, ok := applicationTransitions[status]
	return ok
}

// IsTerminalStatus 终态不可再迁移
func IsTerminalStatus(status string) bool {
	next, ok := applicationTransitions[status]
	return ok && len(next) == 0
}

// CanTransition 状态迁移表校验
func CanTransition(from, to string) bool {
	for _, s := range applicationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ── 职位枚举 ──

// WorkFields 职位领域（slug → 展示名）
var WorkFields = []Choice{
	{"it-support", "IT Support / Helpdesk"},
	{"cloud", "Cloud (AWS/GCP/Azure)"},
	{"backend", "Backend Engineer"},
	{"frontend", "Frontend Developer"},
	{"fullstack", "Full-stack Developer"},
	{"devops", "DevOps / Platform"},
	{"qa", "QA / Test Engineer"},
	{"mobile", "Mobile Developer"},
	{"data-analyst", "Data Analyst"},
	{"data-engineer", "Data Engineer"},
	{"data-scientist", "Data Scientist"},
	{"ai-ml", "AI / ML"},
	{"security", "Security / SecOps"},
	{"network", "Network Engineer"},
	{"sysadmin", "System Administrator"},
	{"database", "Database / DBA"},
	{"ui-ux", "UI/UX Designer"},
	{"product-designer", "Product Designer"},
	{"game-dev", "Game Developer"},
	{"embedded", "Embedded / IoT"},
	{"other", "Other"},
}

// EmploymentTypes 雇佣类型
var EmploymentTypes = []Choice{
	{"full_time", "Full time"},
	{"part_time", "Part time"},
	{"internship", "Internship"},
	{"contract", "Contract"},
}

// Locations 泰国府 slug
var Locations = []string{
	"bangkok", "chiang-mai", "chiang-rai", "lampang", "lamphun", "mae-hong-son",
	"nakhon-sawan", "nan", "phayao", "phetchabun", "phichit", "phitsanulok", "phrae",
	"sukhothai", "tak", "uthai-thani", "uttaradit", "chumphon", "krabi",
	"nakhon-si-thammarat", "narathiwat", "pattani", "phang-nga", "phatthalung",
	"phuket", "ranong", "satun", "songkhla", "surat-thani", "trang", "yala",
	"chachoengsao", "chanthaburi", "chonburi", "prachinburi", "rayong", "sa-kaeo",
	"trat", "amnat-charoen", "bueng-kan", "buriram", "chaiyaphum", "kalasin",
	"khon-kaen", "loei", "maha-sarakham", "mukdahan", "nakhon-phanom",
	"nakhon-ratchasima", "nong-bua-lamphu", "nong-khai", "roi-et", "sakon-nakhon",
	"sisaket", "surin", "ubon-ratchathani", "udon-thani", "yasothon", "ang-thong",
	"chai-nat", "kanchanaburi", "lopburi", "nakhon-nayok", "nakhon-pathom",
	"nonthaburi", "pathum-thani", "phra-nakhon-si-ayutthaya", "prachuap-khiri-khan",
	"ratchaburi", "samut-prakan", "samut-sakhon", "samut-songkhram", "saraburi",
	"sing-buri", "suphan-buri",
}

// Choice 枚举项
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// IsValidWorkField 领域是否合法
func IsValidWorkField(v string) bool { return containsChoice(WorkFields, v) }

// IsValidEmploymentType 雇佣类型是否合法
func IsValidEmploymentType(v string) bool { return containsChoice(EmploymentTypes, v) }

// IsValidLocation 地点是否合法
func IsValidLocation(v string) bool {
	for _, l := range Locations {
		if l == v {
			return true
		}
	}
	return false
}

// LocationLabel bangkok → Bangkok，chiang-mai → Chiang Mai
func LocationLabel(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func containsChoice(choices []Choice, v string) bool {
	for _, c := range choices {
		if c.Value == v {
			return true
		}
	}
	return false
}
