package codec

import (
	"strings"
	"unicode"
)

type column int

const (
	colID column = iota
	colList
	colTarget
	colText
	colPriority
	colStart
	colEnd
	colRepeat
	colStatus
	colCompletedAt
	colCreatedAt
	colPinned
	colAllDay
	colAllYear
	colMonth
	colLongTerm
)

// exportColumns is the column order written on export. colLongTerm is only
// read; priority carries it on the way out.
var exportColumns = []column{
	colID, colList, colTarget, colText, colPriority, colStart, colEnd, colRepeat,
	colStatus, colCompletedAt, colCreatedAt, colPinned, colAllDay, colAllYear, colMonth,
}

var headers = map[Language]map[column]string{
	English: {
		colID: "ID", colList: "List", colTarget: "Target Date", colText: "Text",
		colPriority: "Priority", colStart: "Start", colEnd: "End", colRepeat: "Repeat",
		colStatus: "Status", colCompletedAt: "Completed At", colCreatedAt: "Created At",
		colPinned: "Pinned", colAllDay: "All Day", colAllYear: "All Year", colMonth: "Month",
	},
	Chinese: {
		colID: "ID", colList: "清单名称", colTarget: "计划日期", colText: "待办内容",
		colPriority: "优先级", colStart: "开始时间", colEnd: "结束时间", colRepeat: "重复",
		colStatus: "状态", colCompletedAt: "完成时间", colCreatedAt: "创建时间",
		colPinned: "置顶", colAllDay: "全天", colAllYear: "全年", colMonth: "本月",
	},
}

// yamlKeys are the mapping keys used for YAML documents.
var yamlKeys = map[column]string{
	colID: "id", colList: "list", colTarget: "targetDate", colText: "text",
	colPriority: "priority", colStart: "startDate", colEnd: "endDate", colRepeat: "repeat",
	colStatus: "status", colCompletedAt: "completedAt", colCreatedAt: "createdAt",
	colPinned: "isPinned", colAllDay: "isAllDay", colAllYear: "isAllYear", colMonth: "isMonth",
}

var aliasNames = map[column][]string{
	colID:          {"id"},
	colList:        {"list", "清单名称"},
	colTarget:      {"targetdate", "date", "计划日期"},
	colText:        {"text", "content", "title", "待办内容", "待办事项"},
	colPriority:    {"priority", "优先级"},
	colStart:       {"start", "startdate", "starttime", "开始时间"},
	colEnd:         {"end", "enddate", "endtime", "结束时间"},
	colRepeat:      {"repeat", "重复"},
	colStatus:      {"status", "状态"},
	colCompletedAt: {"completedat", "完成时间"},
	colCreatedAt:   {"createdat", "创建时间"},
	colPinned:      {"pinned", "ispinned", "置顶", "是否置顶"},
	colAllDay:      {"allday", "isallday", "全天"},
	colAllYear:     {"allyear", "isallyear", "全年"},
	colMonth:       {"month", "ismonth", "本月"},
	colLongTerm:    {"longterm", "islongterm", "是否长期"},
}

var aliases = func() map[string]column {
	m := make(map[string]column)
	for c, names := range aliasNames {
		for _, n := range names {
			m[n] = c
		}
	}
	return m
}()

// lookupColumn folds case, spaces, dashes and underscores before matching.
func lookupColumn(header string) (column, bool) {
	key := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' || r == '-' || r == '\ufeff' {
			return -1
		}
		return unicode.ToLower(r)
	}, header)
	c, ok := aliases[key]
	return c, ok
}
