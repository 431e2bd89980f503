package mcq

// CSVTemplate is the static MCQ import template offered for download.
const CSVTemplate = `question,option_a,option_b,option_c,option_d,correct_option,subject,difficulty,university,year,marks,explanation,tags
What is the SI unit of force?,Newton,Joule,Watt,Pascal,A,Physics,Easy,NUST,2023,1,Force is measured in newtons.,"mechanics,units"
Which gas is most abundant in Earth's atmosphere?,Oxygen,Nitrogen,Carbon dioxide,Argon,B,Chemistry,Easy,LUMS,2022,1,,atmosphere
`

// CSVTemplateFilename is the suggested download name for CSVTemplate.
const CSVTemplateFilename = "mcqs-template.csv"
