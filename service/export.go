package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"roleplay/models"

	"github.com/xuri/excelize/v2"
)

const (
	ExportXLSX = "xlsx"
	ExportCSV  = "csv"
)

// ExportFile 导出结果
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

var transcriptHeaders = []string{"序号", "发送方", "内容", "时间"}

// ExportChat 导出会话记录，format 为 xlsx 或 csv
func (s *ConversationService) ExportChat(ctx context.Context, userID, chatID, format string) (*ExportFile, error) {
	if format == "" {
		format = ExportXLSX
	}
	if format != ExportXLSX && format != ExportCSV {
		return nil, ErrUnsupportedExport
	}

	db := s.db.WithContext(ctx)
	chat, err := ownedChat(db, userID, chatID)
	if err != nil {
		return nil, err
	}
	messages, err := chatMessages(db, chatID)
	if err != nil {
		return nil, err
	}

	if format == ExportCSV {
		data, err := transcriptCSV(messages)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Name:        fmt.Sprintf("chat_%s.csv", chat.ID),
			ContentType: "text/csv; charset=utf-8",
			Data:        data,
		}, nil
	}

	data, err := transcriptXLSX(chat, messages)
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Name:        fmt.Sprintf("chat_%s.xlsx", chat.ID),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        data,
	}, nil
}

func transcriptRow(m models.Message) []string {
	return []string{
		strconv.Itoa(m.Position),
		m.SenderType,
		m.Content,
		m.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func transcriptCSV(messages []models.Message) ([]byte, error) {
	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)
	if err := writer.Write(transcriptHeaders); err != nil {
		return nil, err
	}
	for _, m := range messages {
		if err := writer.Write(transcriptRow(m)); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func transcriptXLSX(chat *models.Chat, messages []models.Message) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "对话记录"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "C", 80)
	f.SetColWidth(sheetName, "D", "D", 20)

	// 第一行为会话标题
	f.SetCellValue(sheetName, "A1", chat.Title)
	f.MergeCell(sheetName, "A1", "D1")

	for i, header := range transcriptHeaders {
		cell := fmt.Sprintf("%c2", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, m := range messages {
		row := i + 3
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), m.Position)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), m.SenderType)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), m.Content)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), m.CreatedAt.Format("2006-01-02 15:04:05"))
		f.SetCellStyle(sheetName, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), wrapStyle)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
